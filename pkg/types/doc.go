// Package types defines the shared value types of the retrieval engine:
// code chunks, scored retrieval results, and the review context handed to
// consumers. It has no dependencies on the engine packages so both sides of
// the pipeline can share it.
package types
