package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS is a BlobStore backed by Google Cloud Storage.
type GCS struct {
	client *gcs.Client
}

// NewGCS opens a storage client billed to project. Credentials come from
// the environment.
func NewGCS(ctx context.Context, project string, opts ...option.ClientOption) (*GCS, error) {
	if project != "" {
		opts = append(opts, option.WithQuotaProject(project))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &GCS{client: client}, nil
}

// Upload streams r into bucket/key, replacing any existing object.
func (g *GCS) Upload(ctx context.Context, bucket, key string, r io.Reader) error {
	w := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		w.ContentType = ct
	}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}
