// Package storage keeps uploaded file bytes on the local filesystem.
// Keys map directly to relative paths under a base directory.
package storage

import (
	"context"
	"errors"
	"io"
	"os"
)

// Storage errors returned by System implementations.
var (
	// ErrNotFound indicates the requested key does not exist in storage.
	ErrNotFound = errors.New("storage: key not found")

	// ErrPermissionDenied indicates insufficient permissions to access the key.
	ErrPermissionDenied = errors.New("storage: permission denied")

	// ErrInvalidKey indicates the key is empty, absolute, or escapes the base path.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// System is the blob storage used for uploads.
type System interface {
	// Store streams r to key, replacing any existing blob, and returns the
	// number of bytes written. The blob appears atomically.
	Store(ctx context.Context, key string, r io.Reader) (int64, error)

	// Open returns the blob at key for reading. The caller closes it.
	// Returns ErrNotFound if the key does not exist.
	Open(ctx context.Context, key string) (*os.File, error)

	// Delete removes the blob at key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
