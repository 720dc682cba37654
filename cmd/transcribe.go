package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"minutes2text/internal/config"
	"minutes2text/internal/ffmpeg"
	"minutes2text/internal/worker"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <project> <bucket> <input-file> <output-file>",
	Short: "Transcribe one recording into a per-minute text file",
	Long: `Transcribe splits the input into overlapping windows, stores them under
gs://<bucket>/<hashed-name>/minute-N.flac and writes one "H:MM, text" line
per window to the output file, replacing it if it exists.`,
	Args: cobra.ExactArgs(4),
	RunE: runTranscribe,
}

var (
	configPath    string
	window        time.Duration
	overlap       time.Duration
	language      string
	channels      int
	sampleRate    int
	maxConcurrent int
	rateLimit     int
	tempDir       string
)

func init() {
	addPipelineFlags(transcribeCmd)
	rootCmd.AddCommand(transcribeCmd)
}

// addPipelineFlags registers the flags shared by transcribe and watch.
func addPipelineFlags(c *cobra.Command) {
	defaults := config.Default()

	c.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	c.Flags().DurationVar(&window, "window", defaults.Window, "window length")
	c.Flags().DurationVar(&overlap, "overlap", defaults.Overlap, "look-ahead past each window")
	c.Flags().StringVarP(&language, "language", "l", defaults.Recognition.LanguageCode, "recognition language code")
	c.Flags().IntVar(&channels, "channels", defaults.Recognition.ChannelCount, "audio channel count sent to recognition")
	c.Flags().IntVar(&sampleRate, "sample-rate", defaults.Recognition.SampleRateHertz, "sample rate in Hz sent to recognition")
	c.Flags().IntVarP(&maxConcurrent, "max-concurrent", "j", defaults.MaxConcurrent, "parallel segment uploads")
	c.Flags().IntVar(&rateLimit, "rate-limit", defaults.RateLimitPerMin, "recognition submissions per minute (0 = unlimited)")
	c.Flags().StringVar(&tempDir, "temp-dir", "", "directory for encoded segments (default: system temp)")
}

// loadConfig reads the config file and applies every flag the user set.
func loadConfig(c *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}

	flags := c.Flags()
	if flags.Changed("window") {
		cfg.Window = window
	}
	if flags.Changed("overlap") {
		cfg.Overlap = overlap
	}
	if flags.Changed("language") {
		cfg.Recognition.LanguageCode = language
	}
	if flags.Changed("channels") {
		cfg.Recognition.ChannelCount = channels
	}
	if flags.Changed("sample-rate") {
		cfg.Recognition.SampleRateHertz = sampleRate
	}
	if flags.Changed("max-concurrent") {
		cfg.MaxConcurrent = maxConcurrent
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimitPerMin = rateLimit
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	project, bucket, inputPath, outputPath := args[0], args[1], args[2], args[3]

	// Resolve to absolute path.
	absPath, err := filepath.Abs(inputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Setup signal handling for graceful cancellation.
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

	ffmpeg.LogMediaInfo(ctx, absPath)

	sum, err := p.Run(ctx, worker.Job{InputPath: absPath, OutputPath: outputPath})
	if err != nil {
		return err
	}

	if !quiet {
		color.New(color.FgGreen).Fprintf(os.Stderr, "%d minutes transcribed to %s in %s\n",
			sum.Segments, sum.Output, sum.Elapsed.Round(time.Second))
	}
	return nil
}
