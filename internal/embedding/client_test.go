package embedding_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techjusticelab/opinion-ingest/internal/embedding"
)

type fakeCache struct {
	store map[string][]float32
}

func newFakeCache() *fakeCache { return &fakeCache{store: make(map[string][]float32)} }

func (f *fakeCache) Get(ctx context.Context, text string) ([]float32, bool) {
	v, ok := f.store[text]
	return v, ok
}

func (f *fakeCache) Set(ctx context.Context, text string, vector []float32) {
	f.store[text] = vector
}

func vec(dim int, fill float32) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = fill
	}
	return v
}

func TestEmbedBatchesAndFillsDimension(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var req struct {
			Inputs []string `json:"inputs"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		resp := struct {
			Vectors [][]float32 `json:"vectors"`
		}{}
		for range req.Inputs {
			resp.Vectors = append(resp.Vectors, vec(4, 0.5))
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := embedding.NewClient(embedding.Config{
		BaseURL: srv.URL, Model: "test", Dimension: 4, BatchSize: 2, TruncChars: 100, Timeout: 5 * time.Second,
	}, nil, nil)

	results, err := c.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, vec(4, 0.5), r)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls)) // batch size 2 -> 2 requests for 3 inputs
}

func TestEmbedSkipsCachedEntries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var req struct {
			Inputs []string `json:"inputs"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		resp := struct {
			Vectors [][]float32 `json:"vectors"`
		}{}
		for range req.Inputs {
			resp.Vectors = append(resp.Vectors, vec(4, 0.9))
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	cache := newFakeCache()
	cache.Set(context.Background(), "already-cached", vec(4, 0.1))

	c := embedding.NewClient(embedding.Config{
		BaseURL: srv.URL, Model: "test", Dimension: 4, BatchSize: 10, TruncChars: 100, Timeout: 5 * time.Second,
	}, cache, nil)

	results, err := c.Embed(context.Background(), []string{"already-cached", "fresh"})
	require.NoError(t, err)
	assert.Equal(t, vec(4, 0.1), results[0])
	assert.Equal(t, vec(4, 0.9), results[1])
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEmbedRejectsWrongDimension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"vectors": [][]float32{vec(3, 0.1)},
		})
	}))
	defer srv.Close()

	c := embedding.NewClient(embedding.Config{
		BaseURL: srv.URL, Model: "test", Dimension: 1024, BatchSize: 10, TruncChars: 100, Timeout: 1 * time.Second,
	}, nil, nil)

	_, err := c.Embed(context.Background(), []string{"x"})
	assert.Error(t, err)
}
