package similarity

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns canned vectors and counts calls.
type fakeEmbedder struct {
	vectors map[string][]float64
	calls   int
	fail    bool
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.fail {
		return nil, eris.New("embedder down")
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = f.vectors[t]
	}
	return out, nil
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"empty", nil, nil, 0.0},
		{"mismatched lengths", []float64{1, 2}, []float64{1}, 0.0},
		{"zero norm", []float64{0, 0}, []float64{1, 2}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 0.001)
		})
	}
}

func TestFuzzyRatio(t *testing.T) {
	assert.InDelta(t, 1.0, FuzzyRatio("food and beverage", "food and beverage"), 0.001)
	assert.Equal(t, 0.0, FuzzyRatio("", "anything"))
	assert.Greater(t, FuzzyRatio("fintech", "fintech platform"), FuzzyRatio("fintech", "food"))
}

func TestBestUsesEmbeddings(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float64{
		"tea cafe":          {1, 0},
		"food and beverage": {0.9, 0.1},
		"banking":           {0, 1},
	}}
	e := NewEngine(emb, nil)

	got := e.Best(context.Background(), "tea cafe", []string{"food and beverage", "banking"})
	// The food reference is nearly parallel; the banking one is orthogonal.
	assert.Greater(t, got, 0.9)
}

func TestBestFuzzyFallbackOnError(t *testing.T) {
	e := NewEngine(&fakeEmbedder{fail: true}, nil)

	got := e.Best(context.Background(), "food and beverage", []string{"food and beverage"})
	assert.InDelta(t, 1.0, got, 0.001)
}

func TestBestFuzzyOnlyMode(t *testing.T) {
	e := NewEngine(nil, nil)

	got := e.Best(context.Background(), "fintech", []string{"banking", "fintech"})
	assert.InDelta(t, 1.0, got, 0.001)

	assert.Equal(t, 0.0, e.Best(context.Background(), "", []string{"x"}))
	assert.Equal(t, 0.0, e.Best(context.Background(), "x", nil))
}

func TestPair(t *testing.T) {
	e := NewEngine(nil, nil)
	assert.InDelta(t, 1.0, e.Pair(context.Background(), "tea", "tea"), 0.001)
	assert.Equal(t, 0.0, e.Pair(context.Background(), "", "tea"))
}

func TestPrimeCachesVectors(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float64{
		"alpha": {1, 0},
		"beta":  {0, 1},
	}}
	e := NewEngine(emb, nil)

	e.Prime(context.Background(), []string{"alpha", "beta"})
	require.Equal(t, 1, emb.calls)

	// Cached texts must not trigger further embedder calls.
	_ = e.Pair(context.Background(), "alpha", "beta")
	assert.Equal(t, 1, emb.calls)

	// Re-priming already cached texts is a no-op.
	e.Prime(context.Background(), []string{"alpha"})
	assert.Equal(t, 1, emb.calls)
}
