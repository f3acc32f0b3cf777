package embedder

import (
	"crypto/sha256"
	"encoding/hex"
)

// Source identifies which path produced a vector. Vectors from different
// sources live in different embedding spaces and are not mutually comparable;
// a store that mixes them degrades similarity scores silently instead of
// failing. Keeping the method consistent between index time and query time is
// the caller's job.
type Source string

const (
	// SourceModel marks vectors produced by the networked embedding model.
	SourceModel Source = "model"
	// SourceFallback marks vectors produced by the local hashing scheme.
	SourceFallback Source = "fallback"
)

// FallbackReason tags why an embedding call fell back to the local hashing
// scheme. Today every reason collapses to the same behavior; the tag exists
// so the distinction is not lost in logs.
type FallbackReason string

const (
	ReasonNone         FallbackReason = ""
	ReasonTimeout      FallbackReason = "timeout"
	ReasonBadResponse  FallbackReason = "bad_response"
	ReasonModelMissing FallbackReason = "model_missing"
)

// Result carries a vector plus its provenance. Embedding never fails: when
// the model is unavailable the Result holds a fallback vector and the reason.
type Result struct {
	Vector []float32
	Source Source
	Reason FallbackReason
}

// cacheKey computes the content hash used to cache model vectors. The model
// name participates so switching models never serves stale vectors.
func cacheKey(model, text string) string {
	h := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(h[:])
}
