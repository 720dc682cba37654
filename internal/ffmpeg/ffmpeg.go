package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"minutes2text/internal/audio"
)

// MediaInfo holds duration and audio stream information from ffprobe.
type MediaInfo struct {
	Duration   float64
	Codec      string
	SampleRate int
	Channels   int
}

// Available returns true if ffmpeg is on the PATH.
func Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// probeOutput mirrors ffprobe JSON structure.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// ProbeMedia uses ffprobe to get media duration and the first audio stream.
func ProbeMedia(ctx context.Context, path string) (*MediaInfo, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}

	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name,sample_rate,channels:format=duration",
		"-of", "json",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("ffprobe JSON parse error: %w", err)
	}

	dur, _ := strconv.ParseFloat(probe.Format.Duration, 64)
	info := &MediaInfo{Duration: dur, Codec: "N/A"}
	if len(probe.Streams) > 0 {
		st := probe.Streams[0]
		if st.CodecName != "" {
			info.Codec = st.CodecName
		}
		info.SampleRate, _ = strconv.Atoi(st.SampleRate)
		info.Channels = st.Channels
	}
	return info, nil
}

// Decoder turns any container ffmpeg can read into an in-memory Signal,
// resampled to SampleRate and remixed to Channels.
type Decoder struct {
	SampleRate int
	Channels   int
}

// Decode runs ffmpeg and collects raw s16le PCM from its stdout.
func (d Decoder) Decode(ctx context.Context, path string) (*audio.Signal, error) {
	logrus.WithFields(logrus.Fields{
		"file":        filepath.Base(path),
		"sample_rate": d.SampleRate,
		"channels":    d.Channels,
	}).Debug("decoding audio")

	cmd := exec.CommandContext(ctx,
		"ffmpeg", "-v", "error",
		"-i", path,
		"-vn",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(d.SampleRate),
		"-ac", strconv.Itoa(d.Channels),
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode failed: %w\n%s", err, stderr.String())
	}

	return audio.FromPCM(stdout.Bytes(), d.SampleRate, d.Channels)
}

// Encoder writes segments with a given ffmpeg codec and container.
type Encoder struct {
	Codec  string
	Format string
}

var (
	FLACEncoder = Encoder{Codec: "flac", Format: "flac"}
	WAVEncoder  = Encoder{Codec: "pcm_s16le", Format: "wav"}
)

// Encode pipes the segment's PCM into ffmpeg and writes the result to
// outputPath, overwriting any existing file.
func (e Encoder) Encode(ctx context.Context, seg audio.Segment, outputPath string) error {
	cmd := exec.CommandContext(ctx,
		"ffmpeg", "-v", "error",
		"-f", "s16le",
		"-ar", strconv.Itoa(seg.SampleRate),
		"-ac", strconv.Itoa(seg.Channels),
		"-i", "pipe:0",
		"-c:a", e.Codec,
		"-f", e.Format,
		"-y",
		outputPath,
	)
	cmd.Stdin = bytes.NewReader(seg.PCM())

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg %s encode failed: %w\n%s", e.Format, err, string(out))
	}
	return nil
}

// IsAudioExtension returns true for extensions the watch mode picks up.
func IsAudioExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".mp3", ".m4a", ".wav", ".flac", ".ogg", ".aac", ".opus", ".wma":
		return true
	}
	return false
}

// IsVideoExtension returns true for common video file extensions; their
// audio track is decoded directly.
func IsVideoExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".mp4", ".mkv", ".mov", ".avi", ".flv", ".webm":
		return true
	}
	return false
}

// LogMediaInfo logs file size and media information.
func LogMediaInfo(ctx context.Context, path string) *MediaInfo {
	stat, err := os.Stat(path)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Warn("cannot stat file")
		return nil
	}

	fields := logrus.Fields{
		"size_mb": fmt.Sprintf("%.2f", float64(stat.Size())/(1024*1024)),
	}

	info, err := ProbeMedia(ctx, path)
	if err == nil && info != nil {
		minutes := int(info.Duration) / 60
		seconds := int(info.Duration) % 60
		fields["duration"] = fmt.Sprintf("%02d:%02d", minutes, seconds)
		fields["codec"] = info.Codec
		fields["sample_rate"] = info.SampleRate
		fields["channels"] = info.Channels
	}

	logrus.WithFields(fields).Info("media info")
	return info
}
