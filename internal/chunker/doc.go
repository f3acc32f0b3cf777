// Package chunker divides source text into overlapping, line-aligned chunks
// for embedding and retrieval.
//
// Chunk boundaries are purely positional: lines accumulate greedily until the
// configured character budget is spent, then the next chunk backs up by an
// overlap amount derived from the closed chunk's average line length. This
// keeps the chunker language-agnostic and deterministic, which the store's
// upsert-idempotence relies on.
//
//	chunks := chunker.Chunk(text, "internal/auth/login.go", 1500, 150)
//	for _, c := range chunks {
//	    fmt.Printf("%s lines %d-%d\n", c.ID, c.StartLine, c.EndLine)
//	}
//
// The only hard guarantee of the overlap heuristic is forward progress: the
// next chunk's start line is strictly greater than the previous one.
package chunker
