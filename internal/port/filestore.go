package port

import (
	"context"
	"io"
	"time"
)

// StoredFile is what the file store reports back after a write.
type StoredFile struct {
	Key      string
	Location string
}

// FileStore keeps the raw documents attached to cases. Keys are relative to
// the store's own bucket or root.
type FileStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*StoredFile, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
	// SignedURL returns a time-limited download link for key.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
