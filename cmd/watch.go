package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"minutes2text/internal/ffmpeg"
	"minutes2text/internal/watch"
	"minutes2text/internal/worker"
)

var watchCmd = &cobra.Command{
	Use:   "watch <project> <bucket> <folder>",
	Short: "Transcribe every recording dropped into a folder",
	Long: `Watch monitors a folder and runs the transcription pipeline for each audio
or video file once it stops changing. The transcript is written next to the
input as <name>.txt.`,
	Args: cobra.ExactArgs(3),
	RunE: runWatch,
}

var settle time.Duration

func init() {
	addPipelineFlags(watchCmd)
	watchCmd.Flags().DurationVar(&settle, "settle", 5*time.Second, "quiet period before a new file is picked up")
	rootCmd.AddCommand(watchCmd)
}

func isMediaFile(path string) bool {
	ext := filepath.Ext(path)
	return ffmpeg.IsAudioExtension(ext) || ffmpeg.IsVideoExtension(ext)
}

func runWatch(cmd *cobra.Command, args []string) error {
	project, bucket, folder := args[0], args[1], args[2]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, closeClients, err := worker.New(ctx, worker.Options{
		Project: project,
		Bucket:  bucket,
		Config:  cfg,
		TempDir: tempDir,
	})
	if err != nil {
		return err
	}
	defer closeClients()

	// Runs are serialized; the pipeline itself is sequential.
	var mu sync.Mutex
	handle := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}

		sum, err := p.Run(ctx, worker.Job{InputPath: path, OutputPath: worker.DefaultOutputPath(path)})
		if err != nil {
			logrus.WithError(err).WithField("file", filepath.Base(path)).Error("transcription failed")
			return
		}
		if !quiet {
			color.New(color.FgGreen).Fprintf(os.Stderr, "%s: %d minutes -> %s\n",
				filepath.Base(path), sum.Segments, sum.Output)
		}
	}

	abs, err := filepath.Abs(folder)
	if err != nil {
		return fmt.Errorf("resolve folder: %w", err)
	}
	m, err := watch.New(abs, isMediaFile, handle, settle)
	if err != nil {
		return err
	}
	if err := m.Start(); err != nil {
		return err
	}
	defer m.Stop()

	<-ctx.Done()
	return nil
}
