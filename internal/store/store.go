package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dwhitley/reviewrag/pkg/types"
)

// SchemaVersion is the integer tag written into every index document. It is
// the only corruption and compatibility signal the loader has: a document
// carrying any other version is treated as absent, never as an error.
const SchemaVersion = 1

// loadState is the explicit tri-state of the lazily loaded index document.
type loadState int

const (
	stateNotLoaded loadState = iota // disk not consulted yet
	stateAbsent                     // missing, unreadable, corrupt, or wrong version
	stateLoaded                     // document read successfully
)

// document is the persisted shape of the whole index. The target scale is a
// single developer workspace, so keeping everything in memory and rewriting
// the file wholesale on flush is fine.
type document struct {
	Version    int                        `json:"version"`
	UpdatedAt  time.Time                  `json:"updatedAt"`
	ChunkCount int                        `json:"chunkCount"`
	Chunks     map[string]types.CodeChunk `json:"chunks"`
}

func emptyDocument() document {
	return document{
		Version: SchemaVersion,
		Chunks:  make(map[string]types.CodeChunk),
	}
}

// Store is a persisted, keyed collection of chunks with vectors. It owns the
// lifecycle of every chunk and the on-disk index file. All mutations operate
// on the in-memory map; Flush is the sole boundary that touches durable
// storage.
type Store struct {
	mu    sync.Mutex
	path  string
	state loadState
	doc   document
	dirty bool
}

// New creates a store backed by the given index file. The file is not read
// until the first access; a missing or unusable document initializes an empty
// store rather than failing, so the store is always usable.
func New(path string) *Store {
	return &Store{path: path, state: stateNotLoaded}
}

// Path returns the backing index file location.
func (s *Store) Path() string {
	return s.path
}

// ensureLoaded moves the store out of stateNotLoaded. Callers must hold mu.
func (s *Store) ensureLoaded() {
	if s.state != stateNotLoaded {
		return
	}

	doc, ok := readDocument(s.path)
	if !ok {
		s.doc = emptyDocument()
		s.state = stateAbsent
		return
	}

	s.doc = doc
	s.state = stateLoaded
}

// readDocument reads and validates the backing document. Any deviation from
// the expected shape is reported as absent.
func readDocument(path string) (document, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("reviewrag: cannot read index %s, starting empty: %v", path, err)
		}
		return document{}, false
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("reviewrag: resetting corrupt index %s: %v", path, err)
		return document{}, false
	}

	if doc.Version != SchemaVersion {
		log.Printf("reviewrag: ignoring index %s with unsupported version %d", path, doc.Version)
		return document{}, false
	}

	if doc.Chunks == nil {
		doc.Chunks = make(map[string]types.CodeChunk)
	}
	return doc, true
}

// Upsert inserts or replaces a chunk keyed by its id and marks the store
// dirty. O(1).
func (s *Store) Upsert(chunk types.CodeChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	s.doc.Chunks[chunk.ID] = chunk
	s.doc.ChunkCount = len(s.doc.Chunks)
	s.dirty = true
}

// ReplaceFile swaps every chunk belonging to filePath for the given set in a
// single critical section, so a reader can never observe a mix of a file's
// previous-version and next-version chunks.
func (s *Store) ReplaceFile(filePath string, chunks []types.CodeChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	removed := s.removeFileLocked(filePath)
	for _, chunk := range chunks {
		s.doc.Chunks[chunk.ID] = chunk
	}
	s.doc.ChunkCount = len(s.doc.Chunks)

	if removed > 0 || len(chunks) > 0 {
		s.dirty = true
	}
}

// RemoveFile deletes every chunk whose FilePath matches and reports whether
// anything was removed.
func (s *Store) RemoveFile(filePath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	removed := s.removeFileLocked(filePath)
	if removed == 0 {
		return false
	}
	s.doc.ChunkCount = len(s.doc.Chunks)
	s.dirty = true
	return true
}

func (s *Store) removeFileLocked(filePath string) int {
	removed := 0
	for id, chunk := range s.doc.Chunks {
		if chunk.FilePath == filePath {
			delete(s.doc.Chunks, id)
			removed++
		}
	}
	return removed
}

// GetAll returns every stored chunk. Order is unspecified.
func (s *Store) GetAll() []types.CodeChunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	chunks := make([]types.CodeChunk, 0, len(s.doc.Chunks))
	for _, chunk := range s.doc.Chunks {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// GetForFile returns the stored chunks for one file, ordered by start line.
func (s *Store) GetForFile(filePath string) []types.CodeChunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	chunks := make([]types.CodeChunk, 0)
	for _, chunk := range s.doc.Chunks {
		if chunk.FilePath == filePath {
			chunks = append(chunks, chunk)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].StartLine < chunks[j].StartLine })
	return chunks
}

// IndexedFiles returns the sorted set of file paths with at least one chunk.
func (s *Store) IndexedFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	seen := make(map[string]struct{})
	for _, chunk := range s.doc.Chunks {
		seen[chunk.FilePath] = struct{}{}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Count returns the number of live chunks.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()
	return len(s.doc.Chunks)
}

// UpdatedAt returns the timestamp of the last persisted write.
func (s *Store) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()
	return s.doc.UpdatedAt
}

// Clear empties the store and persists immediately.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = emptyDocument()
	s.state = stateLoaded
	s.dirty = true
	return s.flushLocked()
}

// Flush writes the current state to the backing document if anything changed
// since the last write, and is a no-op otherwise.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	s.ensureLoaded()
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	s.doc.Version = SchemaVersion
	s.doc.UpdatedAt = time.Now().UTC()
	s.doc.ChunkCount = len(s.doc.Chunks)

	data, err := json.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	// Write-then-rename keeps a crashed flush from corrupting the index.
	tmp, err := os.CreateTemp(dir, ".index-*.json")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace index: %w", err)
	}

	s.state = stateLoaded
	s.dirty = false
	return nil
}
