package retriever

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/dwhitley/reviewrag/internal/config"
	"github.com/dwhitley/reviewrag/internal/embedder"
	"github.com/dwhitley/reviewrag/internal/store"
	"github.com/dwhitley/reviewrag/pkg/types"
)

// QueryPrefixLimit bounds how much of a diff becomes the query text. Full
// diffs add latency without adding relevance.
const QueryPrefixLimit = 2000

// Retriever answers similarity queries over the store's contents.
type Retriever struct {
	store    *store.Store
	embedder *embedder.Provider
}

// New creates a Retriever over the given store and embedding provider. The
// provider must use the same method that populated the store; mixed
// embedding spaces are not reconciled.
func New(st *store.Store, emb *embedder.Provider) *Retriever {
	return &Retriever{store: st, embedder: emb}
}

// Retrieve embeds the query, scores every stored chunk with a non-empty
// vector by cosine similarity, drops scores below the configured threshold,
// and returns at most MaxResults results in descending score order. Ordering
// among equal scores is unspecified.
func (r *Retriever) Retrieve(ctx context.Context, query string, cfg *config.Config) []types.ScoredChunk {
	queryVector := r.embedder.Embed(ctx, query).Vector

	chunks := r.store.GetAll()
	scored := make([]types.ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if !chunk.HasEmbedding() {
			continue
		}
		score := CosineSimilarity(queryVector, chunk.Embedding)
		if score < cfg.SimilarityThreshold {
			continue
		}
		scored = append(scored, types.ScoredChunk{Chunk: chunk, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if cfg.MaxResults > 0 && len(scored) > cfg.MaxResults {
		scored = scored[:cfg.MaxResults]
	}
	return scored
}

// GetContext derives a query from a bounded prefix of the diff text,
// retrieves related chunks, and filters out any result belonging to a file
// already under review so the changed files are not echoed back as context.
func (r *Retriever) GetContext(ctx context.Context, diffText string, changedFilePaths []string, cfg *config.Config) *types.ReviewContext {
	query := diffText
	if len(query) > QueryPrefixLimit {
		query = query[:QueryPrefixLimit]
	}

	results := r.Retrieve(ctx, query, cfg)

	changed := make(map[string]struct{}, len(changedFilePaths))
	for _, p := range changedFilePaths {
		changed[p] = struct{}{}
	}

	filtered := make([]types.ScoredChunk, 0, len(results))
	for _, res := range results {
		if _, underReview := changed[res.Chunk.FilePath]; underReview {
			continue
		}
		filtered = append(filtered, res)
	}

	summary := "No similar code found"
	if len(filtered) > 0 {
		summary = fmt.Sprintf("Retrieved %d related snippet(s)", len(filtered))
	}

	return &types.ReviewContext{Summary: summary, Results: filtered}
}

// CosineSimilarity computes the normalized dot product of two vectors.
// Mismatched lengths and all-zero vectors yield 0 rather than an error.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
