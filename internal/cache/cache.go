// Package cache persists remote response text on disk, one plain-text file
// per (source, system kind) pair. Files are fully overwritten on write and
// their absence is a hard error on read. This is the only state that
// outlives a pipeline invocation.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ita-gnss-lab/scintgo/internal/metrics"
)

// Source identifies which remote endpoint a cache entry belongs to.
type Source string

const (
	// SourceCatalog holds the real-time satellite listing response.
	SourceCatalog Source = "celestrak"
	// SourceArchive holds the historical element-set response.
	SourceArchive Source = "spacetrack"
)

// ErrMissing reports that offline mode was requested but no cache file
// exists for the (source, system kind) pair.
var ErrMissing = errors.New("cache file missing")

// ErrWriteFailed reports that a successful fetch could not be persisted.
var ErrWriteFailed = errors.New("cache write failed")

// Store manages cache files under a single directory.
// Single-writer discipline is assumed: concurrent invocations writing the
// same entry race with last-writer-wins semantics, no locking.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the file path for a (source, system kind) entry.
func (s *Store) Path(src Source, kind string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.txt", src, kind))
}

// Read returns the cached text for the entry, or ErrMissing if the file
// does not exist.
func (s *Store) Read(src Source, kind string) (string, error) {
	data, err := os.ReadFile(s.Path(src, kind))
	if err != nil {
		metrics.ObserveCacheRead(string(src), false)
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrMissing, s.Path(src, kind))
		}
		return "", fmt.Errorf("reading cache file: %w", err)
	}
	metrics.ObserveCacheRead(string(src), true)
	return string(data), nil
}

// Write replaces the entry with text. The write is staged in a temporary
// file and committed with a rename, so the entry is never partially written.
func (s *Store) Write(src Source, kind, text string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	tmp, err := os.CreateTemp(s.dir, string(src)+"_*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(src, kind)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	metrics.ObserveCacheWrite(string(src))
	return nil
}
