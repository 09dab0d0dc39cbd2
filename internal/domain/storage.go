package domain

import (
	"context"
	"time"
)

// ObjectStorage holds uploaded file bytes addressed by path.
type ObjectStorage interface {
	Put(ctx context.Context, path, contentType string, data []byte) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// StoredObject is a file as seen by a bucket listing.
type StoredObject struct {
	Path         string
	Size         int64
	LastModified time.Time
}

// ObjectJanitor lists and removes stored files for out-of-band cleanup.
type ObjectJanitor interface {
	List(ctx context.Context, prefix string) ([]StoredObject, error)
	Delete(ctx context.Context, path string) error
}
