package upload

import (
	"context"
	"io"
	"strings"

	"sheetdrop/internal/errs"
)

// allowedExtensions is the fixed allow-set of spreadsheet extensions.
// The check is purely suffix-based; file content is never inspected.
var allowedExtensions = map[string]bool{
	"xls":  true,
	"xlsx": true,
}

// allowed reports whether the filename carries an allowed extension,
// case-insensitively.
func allowed(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(filename[i+1:])]
}

// Service validates and stores uploaded files. Authentication is
// enforced upstream by the session guard before any filename check runs.
type Service struct {
	store BlobStore
}

// NewService constructs the upload service over a storage backend.
func NewService(store BlobStore) *Service { return &Service{store: store} }

// Accept validates the filename, sanitizes it, and writes the stream to
// the storage backend under the sanitized name, overwriting any
// existing file. On success it returns the stored name. Nothing is
// written when validation fails.
func (s *Service) Accept(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if filename == "" {
		return "", errs.ErrEmptyFilename
	}
	if !allowed(filename) {
		return "", errs.ErrDisallowedExtension
	}

	name := SanitizeFilename(filename)
	if name == "" {
		return "", errs.ErrEmptyFilename
	}

	if err := s.store.Put(ctx, name, r, size, contentType); err != nil {
		return "", err
	}
	return name, nil
}
