package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/leadforge/leadscore-cli/internal/model"
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
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS score_runs (
	id           TEXT PRIMARY KEY,
	requirement  TEXT NOT NULL,
	config_hash  TEXT NOT NULL DEFAULT '',
	result_count INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS score_results (
	run_id    TEXT NOT NULL REFERENCES score_runs(id),
	rank      INTEGER NOT NULL,
	company   TEXT NOT NULL,
	score     REAL NOT NULL,
	fit_label TEXT NOT NULL,
	breakdown TEXT NOT NULL,
	reasons   TEXT,
	PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_score_runs_created_at ON score_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_score_results_run_id ON score_results(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run model.ScoreRun, results []model.ScoreResult) error {
	reqJSON, err := json.Marshal(run.Requirement)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal requirement")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO score_runs (id, requirement, config_hash, result_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, string(reqJSON), run.ConfigHash, len(results), run.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
	}

	for rank, r := range results {
		breakdownJSON, err := json.Marshal(r.Breakdown)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal breakdown for %s", r.Company)
		}
		reasonsJSON, err := json.Marshal(r.Reasons)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal reasons for %s", r.Company)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO score_results (run_id, rank, company, score, fit_label, breakdown, reasons) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, rank+1, r.Company, r.Score, r.FitLabel, string(breakdownJSON), string(reasonsJSON),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert result for %s", r.Company)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.ScoreRun, []model.ScoreResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, requirement, config_hash, result_count, created_at FROM score_runs WHERE id = ?`,
		runID,
	)

	var run model.ScoreRun
	var reqJSON string
	err := row.Scan(&run.ID, &reqJSON, &run.ConfigHash, &run.Count, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: scan run")
	}
	if err := json.Unmarshal([]byte(reqJSON), &run.Requirement); err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: unmarshal requirement")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT company, score, fit_label, breakdown, reasons FROM score_results WHERE run_id = ? ORDER BY rank`,
		runID,
	)
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: query results")
	}
	defer rows.Close()

	var results []model.ScoreResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, *r)
	}
	return &run, results, eris.Wrap(rows.Err(), "sqlite: iterate results")
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ScoreRun, error) {
	query := `SELECT id, requirement, config_hash, result_count, created_at FROM score_runs ORDER BY created_at DESC`
	var args []any

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

	var runs []model.ScoreRun
	for rows.Next() {
		var run model.ScoreRun
		var reqJSON string
		if err := rows.Scan(&run.ID, &reqJSON, &run.ConfigHash, &run.Count, &run.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if err := json.Unmarshal([]byte(reqJSON), &run.Requirement); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal requirement")
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanResult(row scannable) (*model.ScoreResult, error) {
	var r model.ScoreResult
	var breakdownJSON string
	var reasonsJSON sql.NullString

	if err := row.Scan(&r.Company, &r.Score, &r.FitLabel, &breakdownJSON, &reasonsJSON); err != nil {
		return nil, eris.Wrap(err, "sqlite: scan result")
	}
	if err := json.Unmarshal([]byte(breakdownJSON), &r.Breakdown); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal breakdown")
	}
	if reasonsJSON.Valid && reasonsJSON.String != "" {
		if err := json.Unmarshal([]byte(reasonsJSON.String), &r.Reasons); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal reasons")
		}
	}
	return &r, nil
}
