// Package audio holds decoded PCM audio and the time-based slices cut from it.
package audio

import (
	"encoding/binary"
	"fmt"
)

// Signal is a decoded recording held as interleaved signed 16-bit PCM.
// A Signal is never mutated after it is loaded.
type Signal struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (one sample per channel).
func (s *Signal) Frames() int {
	if s.Channels <= 0 {
		return 0
	}
	return len(s.Samples) / s.Channels
}

// DurationMs returns the signal length in whole milliseconds, rounded up so
// a trailing partial millisecond still counts.
func (s *Signal) DurationMs() int64 {
	if s.SampleRate <= 0 {
		return 0
	}
	frames := int64(s.Frames())
	rate := int64(s.SampleRate)
	return (frames*1000 + rate - 1) / rate
}

// frameAt converts a millisecond offset into a frame index clamped to the
// signal bounds.
func (s *Signal) frameAt(ms int64) int {
	if ms <= 0 {
		return 0
	}
	f := ms * int64(s.SampleRate) / 1000
	if n := int64(s.Frames()); f > n {
		return int(n)
	}
	return int(f)
}

// Slice returns the segment [startMs, stopMs). Offsets past the end of the
// signal are clamped silently; a start at or beyond the end yields an empty
// segment. The returned samples share memory with the signal.
func (s *Signal) Slice(startMs, stopMs int64) Segment {
	from := s.frameAt(startMs)
	to := s.frameAt(stopMs)
	if to < from {
		to = from
	}
	end := stopMs
	if d := s.DurationMs(); end > d {
		end = d
	}
	if end < startMs {
		end = startMs
	}
	return Segment{
		StartMs:    startMs,
		EndMs:      end,
		Samples:    s.Samples[from*s.Channels : to*s.Channels],
		SampleRate: s.SampleRate,
		Channels:   s.Channels,
	}
}

// Segment is a contiguous, possibly overlapping, slice of a Signal.
type Segment struct {
	Index      int
	StartMs    int64
	EndMs      int64
	Samples    []int16
	SampleRate int
	Channels   int
}

// DurationMs returns the clamped length of the segment.
func (s Segment) DurationMs() int64 {
	return s.EndMs - s.StartMs
}

// PCM returns the samples as little-endian s16 bytes.
func (s Segment) PCM() []byte {
	buf := make([]byte, 2*len(s.Samples))
	for i, v := range s.Samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(v))
	}
	return buf
}

// String returns a human-readable representation for logging.
func (s Segment) String() string {
	return fmt.Sprintf("segment %d: %dms-%dms", s.Index, s.StartMs, s.EndMs)
}

// FromPCM builds a Signal from little-endian s16 bytes. A trailing odd
// byte or partial frame is dropped.
func FromPCM(pcm []byte, sampleRate, channels int) (*Signal, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}

	n := len(pcm) / 2
	n -= n % channels
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return &Signal{Samples: samples, SampleRate: sampleRate, Channels: channels}, nil
}
