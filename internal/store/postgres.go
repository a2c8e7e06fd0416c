package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadfilter-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS filter_runs (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	service_type TEXT NOT NULL,
	mode         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	summary      JSONB,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id       TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	run_id   TEXT NOT NULL REFERENCES filter_runs(id),
	name     TEXT NOT NULL,
	category TEXT,
	address  TEXT,
	phone    TEXT,
	website  TEXT,
	city     TEXT,
	state    TEXT,
	rating   DOUBLE PRECISION,
	reviews  INTEGER,
	UNIQUE (run_id, name, address)
);

CREATE TABLE IF NOT EXISTS verdicts (
	id                  TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	run_id              TEXT NOT NULL REFERENCES filter_runs(id),
	position            INTEGER NOT NULL,
	business_name       TEXT NOT NULL,
	category            TEXT,
	is_service_provider BOOLEAN NOT NULL,
	confidence          DOUBLE PRECISION NOT NULL,
	reason              TEXT,
	model_used          TEXT,
	fallback_used       BOOLEAN NOT NULL DEFAULT false,
	error               TEXT
);

CREATE INDEX IF NOT EXISTS idx_filter_runs_status ON filter_runs(status);
CREATE INDEX IF NOT EXISTS idx_filter_runs_service ON filter_runs(service_type);
CREATE INDEX IF NOT EXISTS idx_leads_run_id ON leads(run_id);
CREATE INDEX IF NOT EXISTS idx_verdicts_run_id ON verdicts(run_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, serviceType, mode string) (*model.FilterRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO filter_runs (id, service_type, mode, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, serviceType, mode, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.FilterRun{
		ID:          id,
		ServiceType: serviceType,
		Mode:        mode,
		Status:      model.RunStatusRunning,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE filter_runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, summary model.Summary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal summary")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE filter_runs SET summary = $1, status = $2, updated_at = $3 WHERE id = $4`,
		summaryJSON, string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.FilterRun, error) {
	var r model.FilterRun
	var summaryNull *[]byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, service_type, mode, status, summary, created_at, updated_at FROM filter_runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.ServiceType, &r.Mode, &r.Status, &summaryNull, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if summaryNull != nil {
		r.Summary = &model.Summary{}
		if err := json.Unmarshal(*summaryNull, r.Summary); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal summary")
		}
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.FilterRun, error) {
	query := `SELECT id, service_type, mode, status, summary, created_at, updated_at FROM filter_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.ServiceType != "" {
		query += fmt.Sprintf(` AND service_type = $%d`, argIdx)
		args = append(args, filter.ServiceType)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.FilterRun
	for rows.Next() {
		var r model.FilterRun
		var summaryNull *[]byte

		if err := rows.Scan(&r.ID, &r.ServiceType, &r.Mode, &r.Status, &summaryNull, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if summaryNull != nil {
			r.Summary = &model.Summary{}
			if err := json.Unmarshal(*summaryNull, r.Summary); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal summary")
			}
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// SaveLeads inserts leads for a run, skipping duplicates with the same
// name and address. Returns the number actually stored.
func (s *PostgresStore) SaveLeads(ctx context.Context, runID string, leads []model.Lead) (int, error) {
	stored := 0
	for _, l := range leads {
		tag, err := s.pool.Exec(ctx,
			`INSERT INTO leads (id, run_id, name, category, address, phone, website, city, state, rating, reviews)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (run_id, name, address) DO NOTHING`,
			uuid.New().String(), runID, l.Name, l.Category, l.Address,
			l.Phone, l.Website, l.City, l.State, l.Rating, l.Reviews,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: insert lead %q", l.Name)
		}
		stored += int(tag.RowsAffected())
	}
	return stored, nil
}

func (s *PostgresStore) SaveVerdicts(ctx context.Context, runID string, verdicts []model.Verdict) error {
	for i, v := range verdicts {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO verdicts (id, run_id, position, business_name, category, is_service_provider, confidence, reason, model_used, fallback_used, error)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			uuid.New().String(), runID, i, v.BusinessName, v.Category,
			v.IsServiceProvider, v.Confidence, v.Reason, v.ModelUsed,
			v.FallbackUsed, v.Error,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert verdict %q", v.BusinessName)
		}
	}
	return nil
}

// ListVerdicts returns a run's verdicts in their original input order.
func (s *PostgresStore) ListVerdicts(ctx context.Context, runID string) ([]model.Verdict, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT business_name, category, is_service_provider, confidence, reason, model_used, fallback_used, error
		 FROM verdicts WHERE run_id = $1 ORDER BY position ASC`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list verdicts for run %s", runID)
	}
	defer rows.Close()

	var verdicts []model.Verdict
	for rows.Next() {
		var v model.Verdict
		var category, reason, modelUsed, verdictErr *string
		if err := rows.Scan(&v.BusinessName, &category, &v.IsServiceProvider,
			&v.Confidence, &reason, &modelUsed, &v.FallbackUsed, &verdictErr); err != nil {
			return nil, eris.Wrap(err, "postgres: scan verdict")
		}
		if category != nil {
			v.Category = *category
		}
		if reason != nil {
			v.Reason = *reason
		}
		if modelUsed != nil {
			v.ModelUsed = *modelUsed
		}
		if verdictErr != nil {
			v.Error = *verdictErr
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, eris.Wrap(rows.Err(), "postgres: list verdicts iterate")
}
