// Package speech submits stored segments for long-running recognition.
package speech

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"minutes2text/internal/config"
	"minutes2text/internal/pipeline"
)

// Recognizer starts a long-running recognition of the audio at uri.
type Recognizer interface {
	LongRunningRecognize(ctx context.Context, cfg config.RecognitionConfig, uri string) (pipeline.Operation, error)
}

// URI returns the storage URI of bucket/key.
func URI(bucket, key string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, key)
}

// Dispatcher submits one job per key with a fixed recognition config.
type Dispatcher struct {
	Recognizer Recognizer
	Config     config.RecognitionConfig

	// RateLimitPerMin caps submissions per minute; zero means no cap.
	RateLimitPerMin int
}

// Dispatch submits every key in order without waiting on any result. The
// first submission error stops the loop; jobs already started keep running
// remotely.
func (d *Dispatcher) Dispatch(ctx context.Context, bucket string, keys []string) ([]pipeline.Operation, error) {
	var limiter *rate.Limiter
	if d.RateLimitPerMin > 0 {
		// Tokens per second = RPM / 60.
		limiter = rate.NewLimiter(rate.Limit(float64(d.RateLimitPerMin)/60.0), 1)
	}

	ops := make([]pipeline.Operation, 0, len(keys))
	for i, key := range keys {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, pipeline.NewStageError(pipeline.StageSubmit, i, fmt.Errorf("rate limiter: %w", err))
			}
		}

		uri := URI(bucket, key)
		op, err := d.Recognizer.LongRunningRecognize(ctx, d.Config, uri)
		if err != nil {
			return nil, pipeline.NewStageError(pipeline.StageSubmit, i, err)
		}
		ops = append(ops, op)

		logrus.WithFields(logrus.Fields{
			"segment":   fmt.Sprintf("%d/%d", i+1, len(keys)),
			"uri":       uri,
			"operation": op.Name(),
		}).Debug("transcription submitted")
	}
	return ops, nil
}
