package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func TestPostgresMigrate(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS score_runs").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(t, st.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveRun(t *testing.T) {
	st, mock := newMockStore(t)

	run, results := testRun()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO score_runs").
		WithArgs(run.ID, pgxmock.AnyArg(), run.ConfigHash, 2, run.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for rank, r := range results {
		mock.ExpectExec("INSERT INTO score_results").
			WithArgs(run.ID, rank+1, r.Company, r.Score, r.FitLabel, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	assert.NoError(t, st.SaveRun(context.Background(), run, results))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveRunRollsBackOnError(t *testing.T) {
	st, mock := newMockStore(t)

	run, results := testRun()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO score_runs").
		WithArgs(run.ID, pgxmock.AnyArg(), run.ConfigHash, 2, run.CreatedAt).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	assert.Error(t, st.SaveRun(context.Background(), run, results))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListRuns(t *testing.T) {
	st, mock := newMockStore(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "requirement", "config_hash", "result_count", "created_at"}).
		AddRow("run-1", []byte(`{"industries":["FinTech"]}`), "abc", 5, now).
		AddRow("run-2", []byte(`{"industries":["Food"]}`), "def", 3, now)

	mock.ExpectQuery("SELECT id, requirement, config_hash, result_count, created_at FROM score_runs").
		WithArgs(100, 0).
		WillReturnRows(rows)

	runs, err := st.ListRuns(context.Background(), RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, []string{"FinTech"}, runs[0].Requirement.Industries)
	assert.Equal(t, 3, runs[1].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetRunNotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, requirement, config_hash, result_count, created_at FROM score_runs WHERE id").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "requirement", "config_hash", "result_count", "created_at"}))

	_, _, err := st.GetRun(context.Background(), "missing")
	assert.ErrorContains(t, err, "run not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
