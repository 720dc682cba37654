package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, time.Minute, cfg.Window)
	assert.Equal(t, 10*time.Second, cfg.Overlap)
	assert.Equal(t, "flac", cfg.KeyExtension)
	assert.Equal(t, 1, cfg.MaxConcurrent)
	assert.Equal(t, 0, cfg.RateLimitPerMin)
	assert.Equal(t, EncodingFLAC, cfg.Recognition.Encoding)
	assert.Equal(t, "en-US", cfg.Recognition.LanguageCode)
	assert.Equal(t, 2, cfg.Recognition.ChannelCount)
	assert.Equal(t, 44100, cfg.Recognition.SampleRateHertz)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero window", func(c *Config) { c.Window = 0 }},
		{"negative overlap", func(c *Config) { c.Overlap = -time.Second }},
		{"empty extension", func(c *Config) { c.KeyExtension = "" }},
		{"zero concurrency", func(c *Config) { c.MaxConcurrent = 0 }},
		{"negative rate", func(c *Config) { c.RateLimitPerMin = -1 }},
		{"bad encoding", func(c *Config) { c.Recognition.Encoding = "MP3" }},
		{"empty language", func(c *Config) { c.Recognition.LanguageCode = "" }},
		{"zero channels", func(c *Config) { c.Recognition.ChannelCount = 0 }},
		{"zero sample rate", func(c *Config) { c.Recognition.SampleRateHertz = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFile_Empty(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minutes2text.yaml")
	doc := `
window: 30s
overlap: 5s
max_concurrent: 4
recognition:
  language_code: de-DE
  channel_count: 1
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Window)
	assert.Equal(t, 5*time.Second, cfg.Overlap)
	assert.Equal(t, 4, cfg.MaxConcurrent)
	assert.Equal(t, "de-DE", cfg.Recognition.LanguageCode)
	assert.Equal(t, 1, cfg.Recognition.ChannelCount)
	// Untouched keys keep their defaults.
	assert.Equal(t, 44100, cfg.Recognition.SampleRateHertz)
	assert.Equal(t, EncodingFLAC, cfg.Recognition.Encoding)
	assert.Equal(t, "flac", cfg.KeyExtension)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: [1, 2"), 0644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
