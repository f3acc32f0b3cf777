package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultEndpoint is where a local embedding model is usually served.
	DefaultEndpoint = "http://localhost:11434"

	// RequestTimeout bounds a single embedding call so an unreachable model
	// can never stall the indexing loop.
	RequestTimeout = 10 * time.Second

	// availabilityProbe is the text embedded by IsAvailable. Content is
	// irrelevant; only whether the model answers matters.
	availabilityProbe = "availability probe"

	cacheSize = 4096
)

// Provider turns text into a fixed-length vector. The primary path calls a
// networked embedding model; any failure there collapses into the
// deterministic local fallback, never into an error.
type Provider struct {
	endpoint string
	model    string
	client   *http.Client
	cache    *lru.Cache[string, []float32]
}

// New creates a Provider for the given endpoint and model. An empty model
// disables the network path entirely; every call then uses the fallback.
func New(endpoint, model string) *Provider {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	cache, err := lru.New[string, []float32](cacheSize)
	if err != nil {
		// Cannot happen with a positive size, but stay usable regardless.
		cache, _ = lru.New[string, []float32](1024)
	}

	return &Provider{
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: RequestTimeout},
		cache:    cache,
	}
}

// embedRequest is the wire shape of an embedding call.
type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embedResponse is the expected reply. Anything else is "unavailable".
type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns a vector for text. It never fails: transport errors,
// timeouts, non-2xx statuses, and malformed or empty vectors all degrade to
// the local hashing fallback, with the reason recorded on the Result.
func (p *Provider) Embed(ctx context.Context, text string) Result {
	if p.model == "" {
		return Result{Vector: HashEmbedding(text), Source: SourceFallback, Reason: ReasonModelMissing}
	}

	key := cacheKey(p.model, text)
	if vector, ok := p.cache.Get(key); ok {
		return Result{Vector: vector, Source: SourceModel}
	}

	vector, reason := p.callModel(ctx, text)
	if reason != ReasonNone {
		return Result{Vector: HashEmbedding(text), Source: SourceFallback, Reason: reason}
	}

	p.cache.Add(key, vector)
	return Result{Vector: vector, Source: SourceModel}
}

// Fallback embeds text with the local hashing scheme, bypassing the network
// path. Callers use it after a failed availability probe to spare every chunk
// in a batch its own doomed network round trip.
func (p *Provider) Fallback(text string) Result {
	return Result{Vector: HashEmbedding(text), Source: SourceFallback, Reason: ReasonModelMissing}
}

// IsAvailable reports whether the networked model answered a single probe
// call. It never returns an error; callers use it to decide whether a batch
// should attempt the network path at all.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	if p.model == "" {
		return false
	}
	_, reason := p.callModel(ctx, availabilityProbe)
	return reason == ReasonNone
}

// callModel performs one bounded-timeout embedding call and classifies any
// failure into a fallback reason.
func (p *Provider) callModel(ctx context.Context, text string) ([]float32, FallbackReason) {
	body, err := json.Marshal(embedRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, ReasonBadResponse
	}

	reqCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, p.endpoint+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, ReasonBadResponse
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() != nil {
			return nil, ReasonTimeout
		}
		return nil, ReasonBadResponse
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ReasonModelMissing
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ReasonBadResponse
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, ReasonBadResponse
	}
	if len(out.Embedding) == 0 {
		return nil, ReasonBadResponse
	}

	return out.Embedding, ReasonNone
}
