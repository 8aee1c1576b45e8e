// Package upload validates incoming files against the spreadsheet
// allow-set and persists them to the configured storage backend.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BlobStore persists an uploaded file under a flat name. Writes are
// last-writer-wins; an existing object of the same name is replaced.
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
}

// FSStore writes uploads into a single local directory.
type FSStore struct {
	dir string
}

// NewFSStore creates the storage directory if needed and returns a
// filesystem-backed store.
func NewFSStore(dir string) (*FSStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

// Put writes the stream to dir/name, truncating any existing file.
func (s *FSStore) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
