package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrFileTooLarge is returned when a stream exceeds the save limit.
	ErrFileTooLarge = errors.New("storage: file too large")
	// ErrNotFound is returned when the stored bytes are absent.
	ErrNotFound = errors.New("storage: file not found")
)

// StoredFile describes a saved object.
type StoredFile struct {
	StoredName   string
	RelativePath string
	SizeBytes    int64
}

// Storage abstracts byte storage for uploaded content. Relative paths are
// always generated stored names, never caller-supplied filenames.
type Storage interface {
	// Save streams source into storage under a freshly generated name that
	// keeps the original extension. It fails with ErrFileTooLarge and
	// removes the partial object the moment the stream exceeds maxBytes.
	Save(ctx context.Context, source io.Reader, originalName string, maxBytes int64) (StoredFile, error)
	// Delete removes stored bytes, failing with ErrNotFound when absent.
	Delete(ctx context.Context, relativePath string) error
	// Open returns a reader over the stored bytes and their size.
	Open(ctx context.Context, relativePath string) (io.ReadCloser, int64, error)
	// ResolvePath returns the backend-specific absolute locator.
	ResolvePath(relativePath string) string
}
