package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func embeddingServer(t *testing.T, vector []float32, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}

		var req embedRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Model)
		assert.NotEmpty(t, req.Prompt)
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		_ = json.NewEncoder(w).Encode(embedResponse{Embedding: vector})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestEmbed_ModelPath(t *testing.T) {
	want := []float32{0.5, 0.25, 0.125}
	server := embeddingServer(t, want, nil)

	p := New(server.URL, "test-model")
	res := p.Embed(context.Background(), "some chunk content")

	assert.Equal(t, SourceModel, res.Source)
	assert.Equal(t, ReasonNone, res.Reason)
	assert.Equal(t, want, res.Vector)
}

func TestEmbed_CachesModelVectors(t *testing.T) {
	var calls atomic.Int32
	server := embeddingServer(t, []float32{1, 0}, &calls)

	p := New(server.URL, "test-model")
	first := p.Embed(context.Background(), "same text")
	second := p.Embed(context.Background(), "same text")

	assert.Equal(t, first.Vector, second.Vector)
	assert.Equal(t, int32(1), calls.Load(), "second call must be served from cache")
}

func TestEmbed_NoModelConfigured(t *testing.T) {
	p := New("", "")
	res := p.Embed(context.Background(), "anything at all")

	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, ReasonModelMissing, res.Reason)
	assert.Equal(t, HashEmbedding("anything at all"), res.Vector)
	assert.False(t, p.IsAvailable(context.Background()))
}

func TestEmbed_FallbackClassification(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		reason  FallbackReason
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			reason: ReasonBadResponse,
		},
		{
			name: "model not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			reason: ReasonModelMissing,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			reason: ReasonBadResponse,
		},
		{
			name: "empty vector",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(embedResponse{})
			},
			reason: ReasonBadResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			p := New(server.URL, "test-model")
			res := p.Embed(context.Background(), "query text")

			assert.Equal(t, SourceFallback, res.Source)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Equal(t, HashEmbedding("query text"), res.Vector, "fallback vector must be the deterministic hash embedding")
		})
	}
}

func TestEmbed_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	p := New(server.URL, "test-model")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := p.Embed(ctx, "slow query")

	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, ReasonTimeout, res.Reason)
	assert.Len(t, res.Vector, FallbackDimension)
}

func TestIsAvailable(t *testing.T) {
	server := embeddingServer(t, []float32{0.1, 0.2}, nil)

	available := New(server.URL, "test-model")
	assert.True(t, available.IsAvailable(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	unavailable := New(down.URL, "test-model")
	assert.False(t, unavailable.IsAvailable(context.Background()))
}

func TestFallback_BypassesNetwork(t *testing.T) {
	var calls atomic.Int32
	server := embeddingServer(t, []float32{1}, &calls)

	p := New(server.URL, "test-model")
	res := p.Fallback("chunk body")

	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, HashEmbedding("chunk body"), res.Vector)
	assert.Equal(t, int32(0), calls.Load())
}
