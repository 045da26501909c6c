package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/leadforge/leadscore-cli/internal/similarity"
	"github.com/leadforge/leadscore-cli/internal/store"
	"github.com/leadforge/leadscore-cli/pkg/jina"
)

// newSimilarityEngine builds the similarity engine from config. Without a
// Jina API key the engine runs in fuzzy-only mode, which keeps the scorer
// fully functional offline.
func newSimilarityEngine() *similarity.Engine {
	if cfg.Jina.Key == "" {
		zap.L().Info("no embeddings key configured, similarity runs in fuzzy-only mode")
		return similarity.NewEngine(nil, zap.L())
	}
	client := jina.NewClient(cfg.Jina.Key,
		jina.WithBaseURL(cfg.Jina.BaseURL),
		jina.WithModel(cfg.Jina.Model),
	)
	return similarity.NewEngine(client, zap.L())
}

// initStore opens and migrates the configured run store.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
