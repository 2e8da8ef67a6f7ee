package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/luneclub/lune/backend/internal/config"
)

// Storage is a blob store for uploaded photos and documents. Keys are
// slash-separated and relative to the store root.
type Storage interface {
	// Put writes the object and returns the URL clients should use for it.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)

	// Delete removes the object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for key without checking that it exists.
	URL(key string) string
}

func New(cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg.BasePath, cfg.BaseURL)
	case "s3", "r2":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
