package service

import (
	"context"
	"io"
)

// Uploader stores evidence files and backup snapshots in the media store.
// Upload returns the public URL of the stored object.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error)
	Delete(ctx context.Context, publicID string) error
}
