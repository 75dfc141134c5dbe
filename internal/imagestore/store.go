// Package imagestore persists receipt images to object storage. Image
// persistence is best-effort and optional: when no bucket is configured
// the disabled implementation is used and receipts simply carry no image
// URL.
package imagestore

import (
	"context"
	"io"
)

// Store uploads receipt images and returns a public URL for them.
type Store interface {
	// Upload stores the image under key and returns its URL.
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Disabled is a no-op store used when object storage is not configured.
type Disabled struct{}

// Upload discards the image and returns an empty URL.
func (Disabled) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	return "", nil
}
