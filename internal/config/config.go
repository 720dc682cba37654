package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Recognition RecognitionConfig `yaml:"recognition"`

	Window          time.Duration `yaml:"window"`
	Overlap         time.Duration `yaml:"overlap"`
	KeyExtension    string        `yaml:"key_extension"`
	MaxConcurrent   int           `yaml:"max_concurrent"`
	RateLimitPerMin int           `yaml:"rate_limit_per_min"`
}

// Default returns one-minute windows with a ten second look-ahead and the
// FLAC/en-US/stereo/44.1 kHz recognition setup.
func Default() *Config {
	return &Config{
		Recognition:     DefaultRecognition(),
		Window:          time.Minute,
		Overlap:         10 * time.Second,
		KeyExtension:    "flac",
		MaxConcurrent:   1,
		RateLimitPerMin: 0,
	}
}

// LoadFile overlays the YAML document at path onto the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Window <= 0:
		return fmt.Errorf("window must be positive, got %s", c.Window)
	case c.Overlap < 0:
		return fmt.Errorf("overlap must not be negative, got %s", c.Overlap)
	case c.KeyExtension == "":
		return fmt.Errorf("key extension must not be empty")
	case c.MaxConcurrent < 1:
		return fmt.Errorf("max concurrent must be at least 1, got %d", c.MaxConcurrent)
	case c.RateLimitPerMin < 0:
		return fmt.Errorf("rate limit must not be negative, got %d", c.RateLimitPerMin)
	}
	return c.Recognition.Validate()
}
