package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "minutes2text",
	Short: "Transcribe long recordings minute by minute with Google Cloud Speech",
	Long: `minutes2text cuts a recording into overlapping one-minute windows, uploads
each window to Cloud Storage, submits every window for long-running
recognition and writes a transcript with one "H:MM, text" line per minute.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func setupLogging() {
	level := logrus.InfoLevel
	if verbose {
		level = logrus.DebugLevel
	}
	if quiet {
		level = logrus.ErrorLevel
	}

	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logrus.SetLevel(level)
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
}
