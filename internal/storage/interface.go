// Package storage mirrors archive files to S3-compatible object
// storage. The local archive stays the source of truth; the mirror is
// best-effort.
package storage

import (
	"context"
	"io"
)

// ObjectStorage is the mirror target interface.
type ObjectStorage interface {
	// Upload stores an object.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Exists checks whether an object is already mirrored.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the public URL for an object.
	GetURL(key string) string

	// EnsureBucket creates the target bucket if it does not exist.
	EnsureBucket(ctx context.Context) error
}
