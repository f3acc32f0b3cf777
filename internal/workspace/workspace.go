// Package workspace is the host-integration seam: it lists and reads files
// on behalf of the indexer. Dir implements it against the local filesystem;
// tests and editor hosts substitute their own.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrTooLarge is returned by ReadFile when a file exceeds the byte ceiling.
var ErrTooLarge = errors.New("file exceeds read limit")

// Workspace enumerates and reads workspace files. Paths are always
// workspace-relative slash paths.
type Workspace interface {
	// ListFiles returns up to limit files matching the include patterns and
	// not matching the exclude patterns. Empty include means "everything".
	ListFiles(ctx context.Context, include, exclude []string, limit int) ([]string, error)

	// ReadFile reads a file as UTF-8 text, refusing files larger than
	// maxBytes (0 means unlimited).
	ReadFile(ctx context.Context, path string, maxBytes int64) (string, error)
}

// Dir is a Workspace rooted at a local directory.
type Dir struct {
	root string
}

// NewDir creates a Workspace over the given directory.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the workspace root directory.
func (d *Dir) Root() string {
	return d.root
}

// ListFiles walks the root, skipping hidden directories, and applies the
// include/exclude globs to workspace-relative paths. Enumeration stops once
// limit files have matched, capping pathological scans.
func (d *Dir) ListFiles(ctx context.Context, include, exclude []string, limit int) ([]string, error) {
	var files []string

	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if entry.IsDir() {
			if path != d.root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !matchAny(include, rel, true) || matchAny(exclude, rel, false) {
			return nil
		}

		files = append(files, rel)
		if limit > 0 && len(files) >= limit {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", d.root, err)
	}

	return files, nil
}

// ReadFile returns the file's text, refusing anything over maxBytes.
func (d *Dir) ReadFile(ctx context.Context, path string, maxBytes int64) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	full := filepath.Join(d.root, filepath.FromSlash(path))

	info, err := os.Stat(full)
	if err != nil {
		return "", err
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return "", fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, path, info.Size())
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// matchAny reports whether rel matches any of the glob patterns. Malformed
// patterns never match. emptyMeansAll controls what an empty pattern list
// means: everything for includes, nothing for excludes.
func matchAny(patterns []string, rel string, emptyMeansAll bool) bool {
	if len(patterns) == 0 {
		return emptyMeansAll
	}
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
