// Package store persists filter runs, their leads, and per-lead
// verdicts. Two implementations exist: SQLite for local single-user
// work and Postgres for shared deployments.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sells-group/leadfilter-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status      model.RunStatus `json:"status,omitempty"`
	ServiceType string          `json:"service_type,omitempty"`
	Limit       int             `json:"limit,omitempty"`
	Offset      int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for filter runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, serviceType, mode string) (*model.FilterRun, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, summary model.Summary) error
	GetRun(ctx context.Context, runID string) (*model.FilterRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.FilterRun, error)

	// Leads and verdicts
	SaveLeads(ctx context.Context, runID string, leads []model.Lead) (int, error)
	SaveVerdicts(ctx context.Context, runID string, verdicts []model.Verdict) error
	ListVerdicts(ctx context.Context, runID string) ([]model.Verdict, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Pool is the subset of pgxpool.Pool the Postgres store uses.
// pgxmock satisfies it, which keeps the store unit-testable without a
// live database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
