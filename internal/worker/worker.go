package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"minutes2text/internal/audio"
	"minutes2text/internal/config"
	"minutes2text/internal/ffmpeg"
	"minutes2text/internal/pipeline"
	"minutes2text/internal/speech"
	"minutes2text/internal/storage"
)

// Decoder loads a recording into memory.
type Decoder interface {
	Decode(ctx context.Context, path string) (*audio.Signal, error)
}

// Job names one input recording and where its transcript goes.
type Job struct {
	InputPath  string
	OutputPath string
}

// DefaultOutputPath returns <input without extension>.txt.
func DefaultOutputPath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".txt"
}

// Summary describes a finished run.
type Summary struct {
	RunID    string
	Prefix   string
	Segments int
	Output   string
	Elapsed  time.Duration
}

// Pipeline runs decode, window, upload, dispatch and assembly strictly one
// stage after another.
type Pipeline struct {
	Decoder    Decoder
	Uploader   *storage.Uploader
	Dispatcher *speech.Dispatcher
	Assembler  *pipeline.Assembler
	Window     time.Duration
	Overlap    time.Duration
}

// Run transcribes job.InputPath into job.OutputPath. Any stage error ends
// the run; the output file is only created once every job was submitted.
func (p *Pipeline) Run(ctx context.Context, job Job) (*Summary, error) {
	started := time.Now()
	sum := &Summary{
		RunID:  uuid.NewString(),
		Prefix: pipeline.HashedName(job.InputPath),
		Output: job.OutputPath,
	}
	if sum.Output == "" {
		sum.Output = DefaultOutputPath(job.InputPath)
	}

	log := logrus.WithFields(logrus.Fields{
		"run":   sum.RunID,
		"input": filepath.Base(job.InputPath),
	})
	log.WithField("prefix", sum.Prefix).Info("processing file")

	sig, err := p.Decoder.Decode(ctx, job.InputPath)
	if err != nil {
		return nil, pipeline.NewStageError(pipeline.StageDecode, -1, err)
	}

	windower := pipeline.NewWindower(sig, p.Window, p.Overlap)
	sum.Segments = windower.Len()
	log.WithFields(logrus.Fields{
		"duration_ms": sig.DurationMs(),
		"segments":    sum.Segments,
		"window":      p.Window,
		"overlap":     p.Overlap,
	}).Info("split into segments")

	keys, err := p.Uploader.Upload(ctx, sum.Prefix, windower.Remaining())
	if err != nil {
		return nil, err
	}
	log.WithField("bucket", p.Uploader.Bucket).Info("segments uploaded")

	ops, err := p.Dispatcher.Dispatch(ctx, p.Uploader.Bucket, keys)
	if err != nil {
		return nil, err
	}
	log.WithField("jobs", len(ops)).Info("transcriptions submitted")

	f, err := os.Create(sum.Output)
	if err != nil {
		return nil, pipeline.NewStageError(pipeline.StageWrite, -1, fmt.Errorf("create transcript: %w", err))
	}
	if err := p.Assembler.Write(ctx, f, ops); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, pipeline.NewStageError(pipeline.StageWrite, -1, fmt.Errorf("close transcript: %w", err))
	}

	sum.Elapsed = time.Since(started)
	log.WithFields(logrus.Fields{
		"path":    sum.Output,
		"elapsed": sum.Elapsed.Round(time.Millisecond),
	}).Info("transcript saved")
	return sum, nil
}

// Options configures a Pipeline backed by Google Cloud.
type Options struct {
	Project string
	Bucket  string
	Config  *config.Config
	TempDir string
}

// New wires a Pipeline to ffmpeg, Cloud Storage and Cloud Speech. The
// returned func closes both clients.
func New(ctx context.Context, opts Options) (*Pipeline, func(), error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	store, err := storage.NewGCS(ctx, opts.Project)
	if err != nil {
		return nil, nil, err
	}
	rec, err := speech.NewGoogle(ctx, opts.Project)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := rec.Close(); err != nil {
			logrus.WithError(err).Debug("close speech client")
		}
		if err := store.Close(); err != nil {
			logrus.WithError(err).Debug("close storage client")
		}
	}

	p := &Pipeline{
		Decoder: ffmpeg.Decoder{
			SampleRate: cfg.Recognition.SampleRateHertz,
			Channels:   cfg.Recognition.ChannelCount,
		},
		Uploader: &storage.Uploader{
			Store:         store,
			Encoder:       encoderFor(cfg.Recognition.Encoding),
			Bucket:        opts.Bucket,
			Extension:     cfg.KeyExtension,
			MaxConcurrent: cfg.MaxConcurrent,
			TempDir:       opts.TempDir,
		},
		Dispatcher: &speech.Dispatcher{
			Recognizer:      rec,
			Config:          cfg.Recognition,
			RateLimitPerMin: cfg.RateLimitPerMin,
		},
		Assembler: &pipeline.Assembler{},
		Window:    cfg.Window,
		Overlap:   cfg.Overlap,
	}
	return p, closeFn, nil
}

func encoderFor(enc config.Encoding) storage.Encoder {
	if enc == config.EncodingLinear16 {
		return ffmpeg.WAVEncoder
	}
	return ffmpeg.FLACEncoder
}
