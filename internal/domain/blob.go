package domain

import (
	"context"
	"io"
	"time"
)

// BlobInfo describes one archived snapshot object.
type BlobInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
}

// BlobWriter uploads snapshot objects to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
