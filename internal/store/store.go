// Package store persists scoring runs and their ranked results.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/leadforge/leadscore-cli/internal/config"
	"github.com/leadforge/leadscore-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store defines the persistence interface for scoring runs. Results are
// stored in ranking order and returned in ranking order.
type Store interface {
	SaveRun(ctx context.Context, run model.ScoreRun, results []model.ScoreResult) error
	GetRun(ctx context.Context, runID string) (*model.ScoreRun, []model.ScoreResult, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.ScoreRun, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store from configuration. Supported drivers are "sqlite"
// and "postgres".
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// NewRun builds the run record for a completed ranking.
func NewRun(req model.Requirement, configHash string, count int) model.ScoreRun {
	return model.ScoreRun{
		ID:          uuid.New().String(),
		CreatedAt:   time.Now().UTC(),
		Requirement: req,
		Count:       count,
		ConfigHash:  configHash,
	}
}

// ConfigHash returns a SHA-256 hash of the scoring config so a persisted
// run records which weight table produced it.
func ConfigHash(cfg any) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:16]) // 32 hex chars
}
