package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when nothing is stored at path.
var ErrNotFound = errors.New("stored file not found")

// Storage defines the interface for file storage operations.
// Paths are relative, slash-separated keys such as "rooms/12/photo.jpg".
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error

	// Get returns ErrNotFound (wrapped) when the file does not exist.
	// The caller closes the returned reader.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete is a no-op for missing files.
	Delete(ctx context.Context, path string) error
}
