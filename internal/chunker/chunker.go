package chunker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/dwhitley/reviewrag/pkg/types"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 1500

	// DefaultChunkOverlap is the character budget shared between consecutive chunks.
	DefaultChunkOverlap = 150
)

// Chunk splits file text into overlapping, line-aligned chunks. Lines are
// accumulated greedily until the chunk reaches chunkSize characters; the next
// chunk then starts a few lines back so neighbours share trailing context.
// The next start line is always strictly greater than the previous one, so
// the walk terminates regardless of the overlap configuration.
//
// Whitespace-only accumulations are dropped without emitting a chunk, but
// line position still advances. A single line longer than chunkSize is
// emitted whole; there is no intra-line splitting.
func Chunk(text, filePath string, chunkSize, chunkOverlap int) []types.CodeChunk {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}

	lines := strings.Split(text, "\n")
	chunks := make([]types.CodeChunk, 0)

	start := 0
	for start < len(lines) {
		size := 0
		end := start
		for end < len(lines) && size < chunkSize {
			size += len(lines[end]) + 1 // count the newline
			end++
		}

		content := strings.Join(lines[start:end], "\n")
		if strings.TrimSpace(content) != "" {
			chunks = append(chunks, types.CodeChunk{
				ID:        ChunkID(filePath, start+1, end),
				FilePath:  filePath,
				StartLine: start + 1,
				EndLine:   end,
				Content:   content,
			})
		}

		if end >= len(lines) {
			break
		}

		next := end - overlapLines(size, end-start, chunkOverlap)
		if next <= start {
			// Forward progress beats the overlap heuristic.
			next = start + 1
		}
		start = next
	}

	return chunks
}

// overlapLines converts the character overlap budget into a line count using
// the closed chunk's average line length. Best effort: degenerate inputs
// yield zero overlap.
func overlapLines(chunkChars, lineCount, chunkOverlap int) int {
	if chunkOverlap <= 0 || lineCount <= 0 {
		return 0
	}
	avg := chunkChars / lineCount
	if avg <= 0 {
		return 0
	}
	return chunkOverlap / avg
}

// ChunkID derives the deterministic content-location id for a slice of a
// file. Identical (filePath, startLine, endLine) always hash to the same id,
// which is what makes re-indexing an unchanged file a no-op write-wise.
func ChunkID(filePath string, startLine, endLine int) string {
	sum := xxh3.HashString(fmt.Sprintf("%s:%d-%d", filePath, startLine, endLine))
	return strconv.FormatUint(sum, 16)
}
