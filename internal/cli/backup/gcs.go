package backup

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"

	"github.com/yndnr/litekv-go/internal/core/domain"
)

// Store is the object storage used for backups.
type Store interface {
	// Writer opens object for writing. The object is committed on Close.
	Writer(ctx context.Context, object string) (io.WriteCloser, error)

	// Reader opens object and returns its size, or -1 if unknown.
	Reader(ctx context.Context, object string) (io.ReadCloser, int64, error)
}

// GCS stores backups in a Google Cloud Storage bucket. Credentials come
// from Application Default Credentials.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS creates a client for bucket.
func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	if bucket == "" {
		return nil, domain.ErrBackupFailed.WithDetails("bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, domain.ErrBackupFailed.WithCause(err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// Writer implements Store.
func (g *GCS) Writer(ctx context.Context, object string) (io.WriteCloser, error) {
	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	return w, nil
}

// Reader implements Store.
func (g *GCS) Reader(ctx context.Context, object string) (io.ReadCloser, int64, error) {
	r, err := g.client.Bucket(g.bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	return r, r.Attrs.Size, nil
}

// Close releases the client.
func (g *GCS) Close() error {
	return g.client.Close()
}
