package jina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key",
		WithBaseURL(srv.URL),
		WithModel("test-model"),
		WithRateLimit(1000, 1000),
	)
}

func TestEmbedSuccess(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, []string{"tea", "cafe"}, req.Input)

		// Out-of-order data must be reordered by index.
		json.NewEncoder(w).Encode(EmbeddingResponse{ //nolint:errcheck
			Data: []EmbeddingData{
				{Index: 1, Embedding: []float64{0, 1}},
				{Index: 0, Embedding: []float64{1, 0}},
			},
		})
	})

	vecs, err := client.Embed(context.Background(), []string{"tea", "cafe"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float64{1, 0}, vecs[0])
	assert.Equal(t, []float64{0, 1}, vecs[1])
}

func TestEmbedEmptyInput(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty input")
	})

	vecs, err := client.Embed(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbedRetriesTransientFailure(t *testing.T) {
	var attempts atomic.Int32
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(EmbeddingResponse{ //nolint:errcheck
			Data: []EmbeddingData{{Index: 0, Embedding: []float64{1}}},
		})
	})

	vecs, err := client.Embed(context.Background(), []string{"tea"})
	require.NoError(t, err)
	require.Len(t, vecs, 1)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestEmbedNonRetryableStatus(t *testing.T) {
	var attempts atomic.Int32
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Embed(context.Background(), []string{"tea"})
	assert.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestEmbedCountMismatch(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(EmbeddingResponse{ //nolint:errcheck
			Data: []EmbeddingData{{Index: 0, Embedding: []float64{1}}},
		})
	})

	_, err := client.Embed(context.Background(), []string{"tea", "cafe"})
	assert.ErrorContains(t, err, "expected 2 embeddings")
}
