package config

import "fmt"

// Encoding names the audio codec the speech service is told to expect.
type Encoding string

const (
	EncodingFLAC     Encoding = "FLAC"
	EncodingLinear16 Encoding = "LINEAR16"
)

// RecognitionConfig is the fixed recognition setup shared by every
// segment of a run.
type RecognitionConfig struct {
	Encoding        Encoding `yaml:"encoding"`
	LanguageCode    string   `yaml:"language_code"`
	ChannelCount    int      `yaml:"channel_count"`
	SampleRateHertz int      `yaml:"sample_rate_hertz"`
}

// DefaultRecognition returns FLAC, en-US, stereo, 44.1 kHz.
func DefaultRecognition() RecognitionConfig {
	return RecognitionConfig{
		Encoding:        EncodingFLAC,
		LanguageCode:    "en-US",
		ChannelCount:    2,
		SampleRateHertz: 44100,
	}
}

func (r RecognitionConfig) Validate() error {
	switch {
	case r.Encoding != EncodingFLAC && r.Encoding != EncodingLinear16:
		return fmt.Errorf("unsupported encoding %q", r.Encoding)
	case r.LanguageCode == "":
		return fmt.Errorf("language code must not be empty")
	case r.ChannelCount <= 0:
		return fmt.Errorf("channel count must be positive, got %d", r.ChannelCount)
	case r.SampleRateHertz <= 0:
		return fmt.Errorf("sample rate must be positive, got %d", r.SampleRateHertz)
	}
	return nil
}
