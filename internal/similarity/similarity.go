// Package similarity computes text similarity for the scoring engine:
// embedding cosine similarity when an embedder is configured, with a
// character-level fuzzy ratio fallback when embeddings are unavailable.
package similarity

import (
	"context"
	"math"
	"sync"

	"github.com/agext/levenshtein"
	"go.uber.org/zap"
)

// Embedder encodes texts into dense vectors. Implementations may fail (the
// API is remote); the Engine absorbs every failure via the fuzzy fallback.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Engine computes similarities with a per-run embedding cache. Requirement
// texts are encoded once and reused across every company evaluation; the
// cache is safe for concurrent use.
type Engine struct {
	emb Embedder
	log *zap.Logger

	mu    sync.RWMutex
	cache map[string][]float64
}

// NewEngine creates an Engine. A nil embedder puts the engine in fuzzy-only
// mode. A nil logger falls back to zap.NewNop.
func NewEngine(emb Embedder, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		emb:   emb,
		log:   log,
		cache: make(map[string][]float64),
	}
}

// Prime encodes the given texts into the cache ahead of scoring, so the
// shared requirement-side vectors are computed exactly once per run.
func (e *Engine) Prime(ctx context.Context, texts []string) {
	if e.emb == nil {
		return
	}
	var missing []string
	e.mu.RLock()
	for _, t := range texts {
		if t == "" {
			continue
		}
		if _, ok := e.cache[t]; !ok {
			missing = append(missing, t)
		}
	}
	e.mu.RUnlock()
	if len(missing) == 0 {
		return
	}

	vecs, err := e.emb.Embed(ctx, missing)
	if err != nil || len(vecs) != len(missing) {
		e.log.Debug("similarity: prime failed, fuzzy fallback will apply", zap.Error(err))
		return
	}
	e.mu.Lock()
	for i, t := range missing {
		e.cache[t] = vecs[i]
	}
	e.mu.Unlock()
}

// Best returns the maximum similarity between text and any reference, in
// [0,1]. Empty text or an empty reference list yields 0. Never fails.
func (e *Engine) Best(ctx context.Context, text string, refs []string) float64 {
	if text == "" || len(refs) == 0 {
		return 0
	}

	if vec, ok := e.vector(ctx, text); ok {
		best := 0.0
		embedded := false
		for _, ref := range refs {
			rv, rok := e.vector(ctx, ref)
			if !rok {
				continue
			}
			embedded = true
			if s := Cosine(vec, rv); s > best {
				best = s
			}
		}
		if embedded {
			return clamp01(best)
		}
	}

	best := 0.0
	for _, ref := range refs {
		if s := FuzzyRatio(text, ref); s > best {
			best = s
		}
	}
	return best
}

// Pair returns the similarity between two texts, in [0,1]. Never fails.
func (e *Engine) Pair(ctx context.Context, a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	av, aok := e.vector(ctx, a)
	bv, bok := e.vector(ctx, b)
	if aok && bok {
		return clamp01(Cosine(av, bv))
	}
	return FuzzyRatio(a, b)
}

// vector returns the cached or freshly computed embedding for text.
func (e *Engine) vector(ctx context.Context, text string) ([]float64, bool) {
	if e.emb == nil || text == "" {
		return nil, false
	}

	e.mu.RLock()
	vec, ok := e.cache[text]
	e.mu.RUnlock()
	if ok {
		return vec, true
	}

	vecs, err := e.emb.Embed(ctx, []string{text})
	if err != nil || len(vecs) != 1 || len(vecs[0]) == 0 {
		e.log.Debug("similarity: embedding failed, using fuzzy fallback",
			zap.Int("text_len", len(text)),
			zap.Error(err),
		)
		return nil, false
	}

	e.mu.Lock()
	e.cache[text] = vecs[0]
	e.mu.Unlock()
	return vecs[0], true
}

// Cosine computes cosine similarity between two vectors. Mismatched or
// zero-norm vectors yield 0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// FuzzyRatio is the character-level fallback similarity in [0,1].
func FuzzyRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return levenshtein.Similarity(a, b, nil)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
