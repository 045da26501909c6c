package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/leadforge/leadscore-cli/internal/model"
)

// Pool is the minimal pgx pool surface the store needs. It is satisfied by
// *pgxpool.Pool and by pgxmock pools in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
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
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool (used by tests).
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS score_runs (
	id           TEXT PRIMARY KEY,
	requirement  JSONB NOT NULL,
	config_hash  TEXT NOT NULL DEFAULT '',
	result_count INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS score_results (
	run_id    TEXT NOT NULL REFERENCES score_runs(id),
	rank      INTEGER NOT NULL,
	company   TEXT NOT NULL,
	score     DOUBLE PRECISION NOT NULL,
	fit_label TEXT NOT NULL,
	breakdown JSONB NOT NULL,
	reasons   JSONB,
	PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_score_runs_created_at ON score_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_score_results_run_id ON score_results(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run model.ScoreRun, results []model.ScoreResult) error {
	reqJSON, err := json.Marshal(run.Requirement)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal requirement")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO score_runs (id, requirement, config_hash, result_count, created_at) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, reqJSON, run.ConfigHash, len(results), run.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert run %s", run.ID)
	}

	for rank, r := range results {
		breakdownJSON, err := json.Marshal(r.Breakdown)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal breakdown for %s", r.Company)
		}
		reasonsJSON, err := json.Marshal(r.Reasons)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal reasons for %s", r.Company)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO score_results (run_id, rank, company, score, fit_label, breakdown, reasons) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			run.ID, rank+1, r.Company, r.Score, r.FitLabel, breakdownJSON, reasonsJSON,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert result for %s", r.Company)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit run")
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.ScoreRun, []model.ScoreResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, requirement, config_hash, result_count, created_at FROM score_runs WHERE id = $1`,
		runID,
	)

	var run model.ScoreRun
	var reqJSON []byte
	err := row.Scan(&run.ID, &reqJSON, &run.ConfigHash, &run.Count, &run.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: scan run")
	}
	if err := json.Unmarshal(reqJSON, &run.Requirement); err != nil {
		return nil, nil, eris.Wrap(err, "postgres: unmarshal requirement")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT company, score, fit_label, breakdown, reasons FROM score_results WHERE run_id = $1 ORDER BY rank`,
		runID,
	)
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: query results")
	}
	defer rows.Close()

	var results []model.ScoreResult
	for rows.Next() {
		var r model.ScoreResult
		var breakdownJSON, reasonsJSON []byte
		if err := rows.Scan(&r.Company, &r.Score, &r.FitLabel, &breakdownJSON, &reasonsJSON); err != nil {
			return nil, nil, eris.Wrap(err, "postgres: scan result")
		}
		if err := json.Unmarshal(breakdownJSON, &r.Breakdown); err != nil {
			return nil, nil, eris.Wrap(err, "postgres: unmarshal breakdown")
		}
		if len(reasonsJSON) > 0 {
			if err := json.Unmarshal(reasonsJSON, &r.Reasons); err != nil {
				return nil, nil, eris.Wrap(err, "postgres: unmarshal reasons")
			}
		}
		results = append(results, r)
	}
	return &run, results, eris.Wrap(rows.Err(), "postgres: iterate results")
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ScoreRun, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, requirement, config_hash, result_count, created_at FROM score_runs ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, filter.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.ScoreRun
	for rows.Next() {
		var run model.ScoreRun
		var reqJSON []byte
		if err := rows.Scan(&run.ID, &reqJSON, &run.ConfigHash, &run.Count, &run.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(reqJSON, &run.Requirement); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal requirement")
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}
