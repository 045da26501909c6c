package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/leadscore-cli/internal/config"
	"github.com/leadforge/leadscore-cli/internal/model"
	"github.com/leadforge/leadscore-cli/internal/similarity"
	"github.com/leadforge/leadscore-cli/internal/store"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	runs    map[string]model.ScoreRun
	results map[string][]model.ScoreResult
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		runs:    make(map[string]model.ScoreRun),
		results: make(map[string][]model.ScoreResult),
	}
}

func (f *fakeStore) SaveRun(_ context.Context, run model.ScoreRun, results []model.ScoreResult) error {
	f.runs[run.ID] = run
	f.results[run.ID] = results
	return nil
}

func (f *fakeStore) GetRun(_ context.Context, runID string) (*model.ScoreRun, []model.ScoreResult, error) {
	run, ok := f.runs[runID]
	if !ok {
		return nil, nil, eris.Errorf("run not found: %s", runID)
	}
	return &run, f.results[runID], nil
}

func (f *fakeStore) ListRuns(_ context.Context, _ store.RunFilter) ([]model.ScoreRun, error) {
	var out []model.ScoreRun
	for _, r := range f.runs {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Close() error                  { return nil }

var _ store.Store = (*fakeStore)(nil)

func newTestAPI() (*apiServer, *fakeStore) {
	st := newFakeStore()
	return &apiServer{
		st:        st,
		engine:    similarity.NewEngine(nil, nil),
		scorerCfg: config.DefaultScorerConfig(),
	}, st
}

func TestHandleHealth(t *testing.T) {
	api, _ := newTestAPI()
	rec := httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleScore(t *testing.T) {
	api, st := newTestAPI()

	body := scoreRequest{
		Requirement: model.Requirement{
			Industries:        []string{"Food & Beverage"},
			PreferredKeywords: []string{"tea"},
			MaxNegativeSignal: 1.0,
			EmployeeRange:     model.EmployeeRange{Low: 0, High: model.DefaultEmployeeHigh},
		},
		Companies: []model.CompanyRecord{
			{
				Company: "Chaayos",
				StructuredInfo: model.StructuredInfo{
					Industry: model.FlexString("Food & Beverage"),
				},
				IndustryKeywords: model.StringList{"tea"},
				FundingSignal:    0.8,
			},
			{
				Company: "GenericTech",
				StructuredInfo: model.StructuredInfo{
					Industry: model.FlexString("Technology"),
				},
			},
		},
		TopN: 1,
		Save: true,
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp scoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Chaayos", resp.Results[0].Company)
	assert.NotEmpty(t, resp.RunID)
	assert.Contains(t, st.runs, resp.RunID)
}

func TestHandleScoreBadRequest(t *testing.T) {
	api, _ := newTestAPI()

	rec := httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewReader([]byte(`not json`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewReader([]byte(`{"companies":[]}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRuns(t *testing.T) {
	api, st := newTestAPI()

	run := store.NewRun(model.Requirement{Industries: []string{"FinTech"}}, "", 1)
	require.NoError(t, st.SaveRun(context.Background(), run, []model.ScoreResult{{Company: "A", Score: 50}}))

	rec := httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []model.ScoreRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	assert.Len(t, runs, 1)

	rec = httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs/"+run.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"A"`)

	rec = httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRunsEmpty(t *testing.T) {
	api, _ := newTestAPI()

	rec := httptest.NewRecorder()
	api.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
