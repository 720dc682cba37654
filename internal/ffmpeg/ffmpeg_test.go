package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if !Available() {
		t.Skip("ffmpeg not installed")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}
}

// sineFile writes a mono sine tone of the given length in seconds.
func sineFile(t *testing.T, dir string, seconds int) string {
	t.Helper()
	path := filepath.Join(dir, "tone.wav")
	cmd := exec.Command("ffmpeg", "-v", "error",
		"-f", "lavfi",
		"-i", "sine=frequency=440:sample_rate=16000:duration="+strconv.Itoa(seconds),
		"-y", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("generate tone: %v\n%s", err, out)
	}
	return path
}

func TestIsAudioExtension(t *testing.T) {
	assert.True(t, IsAudioExtension(".mp3"))
	assert.True(t, IsAudioExtension(".FLAC"))
	assert.False(t, IsAudioExtension(".mp4"))
	assert.False(t, IsAudioExtension(".txt"))
}

func TestIsVideoExtension(t *testing.T) {
	assert.True(t, IsVideoExtension(".MKV"))
	assert.False(t, IsVideoExtension(".wav"))
}

func TestProbeMedia(t *testing.T) {
	skipIfNoFFmpeg(t)
	path := sineFile(t, t.TempDir(), 2)

	info, err := ProbeMedia(context.Background(), path)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, info.Duration, 0.1)
	assert.Equal(t, 16000, info.SampleRate)
	assert.Equal(t, 1, info.Channels)
}

func TestDecodeAndEncode(t *testing.T) {
	skipIfNoFFmpeg(t)
	dir := t.TempDir()
	path := sineFile(t, dir, 3)

	sig, err := Decoder{SampleRate: 8000, Channels: 2}.Decode(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, sig.Channels)
	assert.InDelta(t, 3000, sig.DurationMs(), 50)

	out := filepath.Join(dir, "seg.flac")
	seg := sig.Slice(0, 1000)
	require.NoError(t, FLACEncoder.Encode(context.Background(), seg, out))

	info, err := ProbeMedia(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, "flac", info.Codec)
	assert.Equal(t, 8000, info.SampleRate)
	assert.Equal(t, 2, info.Channels)
	assert.InDelta(t, 1.0, info.Duration, 0.1)
}

func TestDecode_Corrupt(t *testing.T) {
	skipIfNoFFmpeg(t)
	path := filepath.Join(t.TempDir(), "broken.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0644))

	_, err := Decoder{SampleRate: 8000, Channels: 1}.Decode(context.Background(), path)
	assert.Error(t, err)
}

func TestWAVEncoder(t *testing.T) {
	skipIfNoFFmpeg(t)
	dir := t.TempDir()

	sig, err := Decoder{SampleRate: 16000, Channels: 1}.Decode(context.Background(), sineFile(t, dir, 1))
	require.NoError(t, err)

	out := filepath.Join(dir, "seg.wav")
	require.NoError(t, WAVEncoder.Encode(context.Background(), sig.Slice(0, 500), out))

	info, err := ProbeMedia(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, "pcm_s16le", info.Codec)
	assert.InDelta(t, 0.5, info.Duration, 0.05)
}
