package indexer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dwhitley/reviewrag/internal/chunker"
	"github.com/dwhitley/reviewrag/internal/config"
	"github.com/dwhitley/reviewrag/internal/embedder"
	"github.com/dwhitley/reviewrag/internal/store"
	"github.com/dwhitley/reviewrag/internal/workspace"
)

const (
	// MaxFileBytes guards memory and time per file; larger files are skipped.
	MaxFileBytes = 500 * 1024

	// MaxWorkspaceFiles caps enumeration to keep pathological scans bounded.
	MaxWorkspaceFiles = 5000
)

// ErrIndexInProgress is returned when a workspace index run is requested
// while another one holds the index lock.
var ErrIndexInProgress = errors.New("indexing already in progress")

// Indexer keeps the store consistent with the current state of workspace
// files by driving the chunker and the embedding provider.
type Indexer struct {
	store    *store.Store
	embedder *embedder.Provider
	ws       workspace.Workspace
	lock     indexLock
}

// Stats aggregates the outcome of a workspace index run.
type Stats struct {
	FilesIndexed  int
	ChunksCreated int
	FilesSkipped  int
	Duration      time.Duration
}

// New creates an Indexer over the given store, embedding provider, and
// workspace collaborator.
func New(st *store.Store, emb *embedder.Provider, ws workspace.Workspace) *Indexer {
	return &Indexer{store: st, embedder: emb, ws: ws}
}

// IndexFile re-chunks and re-embeds a single workspace file, replacing its
// previous chunks atomically, and returns the number of chunks created.
// Oversize files are skipped: their stale chunks are removed and
// workspace.ErrTooLarge is returned so batch callers can count the skip.
func (idx *Indexer) IndexFile(ctx context.Context, filePath string, cfg *config.Config) (int, error) {
	return idx.indexFile(ctx, filePath, cfg, true)
}

func (idx *Indexer) indexFile(ctx context.Context, filePath string, cfg *config.Config, useModel bool) (int, error) {
	text, err := idx.ws.ReadFile(ctx, filePath, MaxFileBytes)
	if err != nil {
		if errors.Is(err, workspace.ErrTooLarge) {
			// A file that grew past the guard must not keep serving its old
			// chunks as current context.
			idx.store.RemoveFile(filePath)
		}
		return 0, err
	}

	chunks := chunker.Chunk(text, filePath, cfg.ChunkSize, cfg.ChunkOverlap)

	now := time.Now().UTC()
	for i := range chunks {
		var res embedder.Result
		if useModel {
			res = idx.embedder.Embed(ctx, chunks[i].Content)
		} else {
			res = idx.embedder.Fallback(chunks[i].Content)
		}
		chunks[i].Embedding = res.Vector
		chunks[i].IndexedAt = now
	}

	// One swap per file: readers never see old and new chunks mixed.
	idx.store.ReplaceFile(filePath, chunks)
	return len(chunks), nil
}

// IndexWorkspace rebuilds the index for every file matching the configured
// include/exclude patterns. Any single file's failure is logged and counted
// as skipped; the run always continues to the next file. Cancellation is
// honored at file granularity and yields partial stats, not an error. The
// store is flushed once after the loop.
func (idx *Indexer) IndexWorkspace(ctx context.Context, cfg *config.Config) (*Stats, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrIndexInProgress
	}
	defer idx.lock.Release()

	start := time.Now()

	files, err := idx.ws.ListFiles(ctx, cfg.IncludePatterns, cfg.ExcludePatterns, MaxWorkspaceFiles)
	if err != nil {
		return nil, fmt.Errorf("list workspace files: %w", err)
	}

	// One probe for the whole batch: if the model is down, don't pay a
	// doomed network round trip per chunk.
	useModel := idx.embedder.IsAvailable(ctx)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var indexed, created, skipped atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, filePath := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			n, err := idx.indexFile(gctx, filePath, cfg, useModel)
			if err != nil {
				skipped.Add(1)
				log.Printf("reviewrag: skipping %s: %v", filePath, err)
				return nil
			}
			indexed.Add(1)
			created.Add(int32(n))
			return nil
		})
	}

	// Workers absorb per-file errors, so Wait only propagates nil.
	_ = g.Wait()

	if err := idx.store.Flush(); err != nil {
		return nil, fmt.Errorf("flush index: %w", err)
	}

	return &Stats{
		FilesIndexed:  int(indexed.Load()),
		ChunksCreated: int(created.Load()),
		FilesSkipped:  int(skipped.Load()),
		Duration:      time.Since(start),
	}, nil
}
