// Package embedder produces fixed-length vectors for chunks and queries.
//
// The primary path posts {model, prompt} to a local embedding endpoint and
// expects {embedding: [...]} back. Every failure class - transport error,
// timeout, non-2xx status, malformed or empty vector - is classified as
// "unavailable" and degrades to a pure, deterministic 512-dimension
// bag-of-hashed-words fallback. Nothing in this package returns an error to
// its callers.
//
//	p := embedder.New("http://localhost:11434", "nomic-embed-text")
//	res := p.Embed(ctx, chunk.Content)
//	if res.Source == embedder.SourceFallback {
//	    log.Printf("embedding fell back: %s", res.Reason)
//	}
//
// Model vectors and fallback vectors occupy different embedding spaces; a
// store mixing both produces degraded (but not crashing) similarity scores.
// That is accepted behavior, tracked by Result.Source rather than reconciled.
//
// Successful model vectors are cached in-memory by content hash, so repeated
// indexing of unchanged chunks costs no network calls.
package embedder
