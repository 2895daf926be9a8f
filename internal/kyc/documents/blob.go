package documents

import "context"

// BlobStore persists document bytes. Put returns the public URL of the stored
// object. Implementations wrap sentinel.ErrUnavailable for retryable faults.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
	Delete(ctx context.Context, key string) error
}
