// Package blob defines object storage used for candidate snapshots.
package blob

import (
	"context"
	"io"
)

// Writer stores objects by path.
type Writer interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// Reader retrieves objects by path.
// Get returns an error wrapping storage.ErrNotFound for a missing object.
type Reader interface {
	Get(ctx context.Context, path string) (io.ReadCloser, error)
}

// Store is both a Writer and a Reader.
type Store interface {
	Writer
	Reader
}
