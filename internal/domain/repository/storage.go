package repository

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrObjectNotFound is returned when an object does not exist in the bucket.
	ErrObjectNotFound = errors.New("object not found")

	// ErrBucketNotFound is returned when the configured bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
)

// ObjectStorage defines the interface for blob storage operations.
// Implementations should be provided by the infrastructure layer (e.g., MinIO, S3).
type ObjectStorage interface {
	// Upload stores an object. size may be -1 when unknown.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// ViewURL returns a URL serving the object as stored, suitable for direct playback.
	ViewURL(ctx context.Context, key string) (string, error)

	// PreviewURL returns a URL for the object carrying width and height as a size hint.
	// Whether the object is actually resized depends on what serves the URL.
	PreviewURL(ctx context.Context, key string, width, height int) (string, error)

	// Delete removes an object from the storage. The service layer never calls it;
	// orphaned uploads are left in place.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists in the storage. URL derivation does not,
	// so callers that must report unknown keys check here first.
	Exists(ctx context.Context, key string) (bool, error)
}
