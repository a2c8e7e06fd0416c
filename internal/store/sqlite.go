package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadfilter-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS filter_runs (
	id           TEXT PRIMARY KEY,
	service_type TEXT NOT NULL,
	mode         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	summary      TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id       TEXT PRIMARY KEY,
	run_id   TEXT NOT NULL REFERENCES filter_runs(id),
	name     TEXT NOT NULL,
	category TEXT,
	address  TEXT,
	phone    TEXT,
	website  TEXT,
	city     TEXT,
	state    TEXT,
	rating   REAL,
	reviews  INTEGER,
	UNIQUE (run_id, name, address)
);

CREATE TABLE IF NOT EXISTS verdicts (
	id                  TEXT PRIMARY KEY,
	run_id              TEXT NOT NULL REFERENCES filter_runs(id),
	position            INTEGER NOT NULL,
	business_name       TEXT NOT NULL,
	category            TEXT,
	is_service_provider INTEGER NOT NULL,
	confidence          REAL NOT NULL,
	reason              TEXT,
	model_used          TEXT,
	fallback_used       INTEGER NOT NULL DEFAULT 0,
	error               TEXT
);

CREATE INDEX IF NOT EXISTS idx_filter_runs_status ON filter_runs(status);
CREATE INDEX IF NOT EXISTS idx_filter_runs_service ON filter_runs(service_type);
CREATE INDEX IF NOT EXISTS idx_leads_run_id ON leads(run_id);
CREATE INDEX IF NOT EXISTS idx_verdicts_run_id ON verdicts(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, serviceType, mode string) (*model.FilterRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO filter_runs (id, service_type, mode, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, serviceType, mode, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
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

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE filter_runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, summary model.Summary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE filter_runs SET summary = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(summaryJSON), string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.FilterRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, service_type, mode, status, summary, created_at, updated_at FROM filter_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.FilterRun, error) {
	query := `SELECT id, service_type, mode, status, summary, created_at, updated_at FROM filter_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.ServiceType != "" {
		query += ` AND service_type = ?`
		args = append(args, filter.ServiceType)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.FilterRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// SaveLeads inserts leads for a run, skipping duplicates with the same
// name and address. Returns the number actually stored.
func (s *SQLiteStore) SaveLeads(ctx context.Context, runID string, leads []model.Lead) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin save leads")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO leads (id, run_id, name, category, address, phone, website, city, state, rating, reviews)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert lead")
	}
	defer stmt.Close()

	stored := 0
	for _, l := range leads {
		res, err := stmt.ExecContext(ctx,
			uuid.New().String(), runID, l.Name, l.Category, l.Address,
			l.Phone, l.Website, l.City, l.State, l.Rating, l.Reviews,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert lead %q", l.Name)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		stored += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit save leads")
	}
	return stored, nil
}

func (s *SQLiteStore) SaveVerdicts(ctx context.Context, runID string, verdicts []model.Verdict) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save verdicts")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO verdicts (id, run_id, position, business_name, category, is_service_provider, confidence, reason, model_used, fallback_used, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert verdict")
	}
	defer stmt.Close()

	for i, v := range verdicts {
		_, err := stmt.ExecContext(ctx,
			uuid.New().String(), runID, i, v.BusinessName, v.Category,
			v.IsServiceProvider, v.Confidence, v.Reason, v.ModelUsed,
			v.FallbackUsed, v.Error,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert verdict %q", v.BusinessName)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save verdicts")
}

// ListVerdicts returns a run's verdicts in their original input order.
func (s *SQLiteStore) ListVerdicts(ctx context.Context, runID string) ([]model.Verdict, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT business_name, category, is_service_provider, confidence, reason, model_used, fallback_used, error
		 FROM verdicts WHERE run_id = ? ORDER BY position ASC`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list verdicts for run %s", runID)
	}
	defer rows.Close()

	var verdicts []model.Verdict
	for rows.Next() {
		var v model.Verdict
		var category, reason, modelUsed, verdictErr sql.NullString
		if err := rows.Scan(&v.BusinessName, &category, &v.IsServiceProvider,
			&v.Confidence, &reason, &modelUsed, &v.FallbackUsed, &verdictErr); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan verdict")
		}
		v.Category = category.String
		v.Reason = reason.String
		v.ModelUsed = modelUsed.String
		v.Error = verdictErr.String
		verdicts = append(verdicts, v)
	}
	return verdicts, eris.Wrap(rows.Err(), "sqlite: list verdicts iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.FilterRun, error) {
	var r model.FilterRun
	var summaryJSON sql.NullString

	err := row.Scan(&r.ID, &r.ServiceType, &r.Mode, &r.Status, &summaryJSON, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if summaryJSON.Valid {
		r.Summary = &model.Summary{}
		if err := json.Unmarshal([]byte(summaryJSON.String), r.Summary); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal summary")
		}
	}
	return &r, nil
}
