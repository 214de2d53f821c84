package domain

import (
	"context"
	"io"
	"time"
)

// BlobInfo describes a stored object.
type BlobInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// BlobWriter uploads slip images and CSV files to object storage.
type BlobWriter interface {
	Put(ctx context.Context, key string, data io.Reader, contentType string) error
}

// BlobReader retrieves stored objects.
type BlobReader interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
}

// BlobDeleter removes stored objects; used by the retention janitor.
type BlobDeleter interface {
	Delete(ctx context.Context, key string) error
}
