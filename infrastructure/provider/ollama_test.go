package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pondside/corpus/domain/search"
)

func TestOllamaProvider_Embed(t *testing.T) {
	var gotBody embeddingRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"embedding": []float64{0.1, 0.2, 0.3},
		})
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "all-minilm:l6-v2")

	vector, err := p.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vector)
	assert.Equal(t, "all-minilm:l6-v2", gotBody.Model)
	assert.Equal(t, "hello world", gotBody.Prompt)
}

func TestOllamaProvider_EmbedEmptyText_SkipsRemoteCall(t *testing.T) {
	var calls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{1}})
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "all-minilm:l6-v2")

	vector, err := p.Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, vector)
	assert.Equal(t, int64(0), calls.Load())
}

func TestOllamaProvider_MissingEmbeddingField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"model": "all-minilm:l6-v2"})
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "all-minilm:l6-v2")

	vector, err := p.Embed(context.Background(), "some text")
	require.NoError(t, err)
	assert.Empty(t, vector)
}

func TestOllamaProvider_Non2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "all-minilm:l6-v2")

	_, err := p.Embed(context.Background(), "some text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, search.ErrUpstream))
	assert.Contains(t, err.Error(), "500")
}

func TestOllamaProvider_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "all-minilm:l6-v2")

	_, err := p.Embed(context.Background(), "some text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, search.ErrUpstream))
}

func TestOllamaProvider_ServerUnreachable(t *testing.T) {
	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p := NewOllamaProvider(server.URL, "all-minilm:l6-v2")

	_, err := p.Embed(context.Background(), "some text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, search.ErrUpstream))
}
