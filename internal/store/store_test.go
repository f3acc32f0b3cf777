package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwhitley/reviewrag/pkg/types"
)

func testChunk(id, filePath string, startLine int) types.CodeChunk {
	return types.CodeChunk{
		ID:        id,
		FilePath:  filePath,
		StartLine: startLine,
		EndLine:   startLine + 9,
		Content:   "func example() {}",
		Embedding: []float32{0.5, 0.25, 0.125},
		IndexedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "index.json"))
}

func TestUpsert_IdempotentByID(t *testing.T) {
	s := testStore(t)

	s.Upsert(testChunk("c1", "a.go", 1))
	s.Upsert(testChunk("c1", "a.go", 1))

	assert.Equal(t, 1, s.Count())
}

func TestRemoveFile(t *testing.T) {
	s := testStore(t)
	s.Upsert(testChunk("a1", "a.go", 1))
	s.Upsert(testChunk("a2", "a.go", 11))
	s.Upsert(testChunk("b1", "b.go", 1))

	removed := s.RemoveFile("a.go")

	assert.True(t, removed)
	assert.Equal(t, 1, s.Count())
	assert.Empty(t, s.GetForFile("a.go"))
	assert.Len(t, s.GetForFile("b.go"), 1)

	assert.False(t, s.RemoveFile("a.go"), "second removal must report nothing removed")
	assert.False(t, s.RemoveFile("missing.go"))
}

func TestReplaceFile_NoOrphans(t *testing.T) {
	s := testStore(t)
	s.Upsert(testChunk("a1", "a.go", 1))
	s.Upsert(testChunk("a2", "a.go", 11))
	s.Upsert(testChunk("a3", "a.go", 21))

	// The file shrank: the replacement set is smaller than the old one.
	s.ReplaceFile("a.go", []types.CodeChunk{testChunk("a1", "a.go", 1)})

	chunks := s.GetForFile("a.go")
	require.Len(t, chunks, 1)
	assert.Equal(t, "a1", chunks[0].ID)
	assert.Equal(t, 1, s.Count())
}

func TestGetForFile_OrderedByStartLine(t *testing.T) {
	s := testStore(t)
	s.Upsert(testChunk("a2", "a.go", 50))
	s.Upsert(testChunk("a1", "a.go", 1))

	chunks := s.GetForFile("a.go")

	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 50, chunks[1].StartLine)
}

func TestIndexedFiles_SortedAndDeduplicated(t *testing.T) {
	s := testStore(t)
	s.Upsert(testChunk("b1", "b.go", 1))
	s.Upsert(testChunk("a1", "a.go", 1))
	s.Upsert(testChunk("a2", "a.go", 11))

	assert.Equal(t, []string{"a.go", "b.go"}, s.IndexedFiles())
}

func TestFlushAndReload_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")

	s := New(path)
	want := testChunk("c1", "a.go", 1)
	s.Upsert(want)
	s.Upsert(testChunk("c2", "b.go", 5))
	require.NoError(t, s.Flush())

	reloaded := New(path)
	assert.Equal(t, 2, reloaded.Count())

	chunks := reloaded.GetForFile("a.go")
	require.Len(t, chunks, 1)
	assert.Equal(t, want, chunks[0])
	assert.False(t, reloaded.UpdatedAt().IsZero())
}

func TestFlush_NoOpWhenClean(t *testing.T) {
	s := testStore(t)
	s.Upsert(testChunk("c1", "a.go", 1))
	require.NoError(t, s.Flush())

	// A clean store must not rewrite the document.
	require.NoError(t, os.Remove(s.Path()))
	require.NoError(t, s.Flush())

	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_CorruptDocumentResetsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0o644))

	s := New(path)

	assert.Equal(t, 0, s.Count())

	// The store stays fully usable after the reset.
	s.Upsert(testChunk("c1", "a.go", 1))
	require.NoError(t, s.Flush())
	assert.Equal(t, 1, New(path).Count())
}

func TestLoad_VersionMismatchTreatedAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	doc := `{"version": 99, "updatedAt": "2025-06-01T12:00:00Z", "chunkCount": 1, "chunks": {"x": {"id": "x", "filePath": "a.go", "startLine": 1, "endLine": 2, "content": "y"}}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	assert.Equal(t, 0, New(path).Count())
}

func TestLoad_MissingDocument(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "never-written.json"))
	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.GetAll())
}

func TestClear_PersistsImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")

	s := New(path)
	s.Upsert(testChunk("c1", "a.go", 1))
	require.NoError(t, s.Flush())

	require.NoError(t, s.Clear())

	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 0, New(path).Count(), "the empty document must already be on disk")
}
