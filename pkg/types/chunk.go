package types

import (
	"errors"
	"time"
)

// CodeChunk is a contiguous, line-aligned slice of one file's text captured at
// index time. Its ID is a pure function of (FilePath, StartLine, EndLine), so
// re-chunking identical content reproduces identical IDs and upserts become
// idempotent.
type CodeChunk struct {
	ID        string    `json:"id"`
	FilePath  string    `json:"filePath"`
	StartLine int       `json:"startLine"`
	EndLine   int       `json:"endLine"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`
	IndexedAt time.Time `json:"indexedAt"`
}

// HasEmbedding reports whether the chunk carries a vector. Chunks without one
// are never scored by the retriever.
func (c *CodeChunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// Validate checks the structural invariants of a chunk.
func (c *CodeChunk) Validate() error {
	if c.ID == "" {
		return errors.New("chunk id cannot be empty")
	}

	if c.FilePath == "" {
		return errors.New("chunk file path cannot be empty")
	}

	if c.StartLine <= 0 || c.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}

	if c.StartLine > c.EndLine {
		return errors.New("start line must be before or equal to end line")
	}

	if c.Content == "" {
		return errors.New("chunk content cannot be empty")
	}

	return nil
}
