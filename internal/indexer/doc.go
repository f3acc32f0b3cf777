// Package indexer orchestrates the write path: workspace files are chunked,
// embedded, and swapped into the store one file at a time.
//
// The resilience contract is that one bad file never blocks the rest of the
// index: oversize and unreadable files contribute zero chunks, are counted as
// skipped, and the run carries on. Cancellation is polled per file, never
// mid-file, so an interrupted run leaves the store consistent and returns
// partial statistics.
package indexer
