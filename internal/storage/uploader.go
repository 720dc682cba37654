// Package storage uploads encoded segments to object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"minutes2text/internal/audio"
	"minutes2text/internal/pipeline"
)

// BlobStore persists bytes under bucket/key.
type BlobStore interface {
	Upload(ctx context.Context, bucket, key string, r io.Reader) error
}

// Encoder writes a segment to outputPath in the transport codec.
type Encoder interface {
	Encode(ctx context.Context, seg audio.Segment, outputPath string) error
}

// Key returns the object key of segment index under prefix.
func Key(prefix string, index int, ext string) string {
	return fmt.Sprintf("%s/minute-%d.%s", prefix, index, ext)
}

// Uploader encodes segments and stores them in a bucket.
type Uploader struct {
	Store         BlobStore
	Encoder       Encoder
	Bucket        string
	Extension     string
	MaxConcurrent int
	TempDir       string
}

// Upload stores every segment and returns the keys in segment order. With
// MaxConcurrent above one, segments are encoded and uploaded in parallel;
// keys still line up with the input. The first failure aborts the rest.
func (u *Uploader) Upload(ctx context.Context, prefix string, segments []audio.Segment) ([]string, error) {
	keys := make([]string, len(segments))

	limit := u.MaxConcurrent
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, seg := range segments {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			key := Key(prefix, i, u.Extension)
			if err := u.uploadOne(gctx, seg, key); err != nil {
				return pipeline.NewStageError(pipeline.StageUpload, i, err)
			}
			keys[i] = key

			logrus.WithFields(logrus.Fields{
				"segment": fmt.Sprintf("%d/%d", i+1, len(segments)),
				"key":     key,
			}).Debug("segment uploaded")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return keys, nil
}

// uploadOne encodes seg into a temporary file and streams it to the store.
// The file is removed on every path out.
func (u *Uploader) uploadOne(ctx context.Context, seg audio.Segment, key string) error {
	tf, err := os.CreateTemp(u.TempDir, "minute-*."+u.Extension)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tf.Name()
	defer os.Remove(tmpPath)
	// The encoder writes by path; close our handle first.
	if err := tf.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := u.Encoder.Encode(ctx, seg, tmpPath); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("open encoded segment: %w", err)
	}
	defer f.Close()

	if err := u.Store.Upload(ctx, u.Bucket, key, f); err != nil {
		return fmt.Errorf("upload gs://%s/%s: %w", u.Bucket, key, err)
	}
	return nil
}
