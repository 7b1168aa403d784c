package audio

import (
	"encoding/binary"
	"time"
)

const (
	SampleRate    = 24000
	Channels      = 1
	BitDepth      = 16
	FrameDuration = 20 * time.Millisecond
	FrameSize     = 480           // samples per 20ms frame at 24kHz mono
	FrameBytes    = FrameSize * 2 // bytes per frame (int16 = 2 bytes)
)

// Buffer is an immutable set of decoded PCM samples plus format metadata.
// It is produced once per synthesis result and superseded wholesale when a
// new result arrives, never mutated in place.
type Buffer struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// NewBuffer wraps decoded samples in engine format (24kHz mono).
func NewBuffer(samples []int16) *Buffer {
	return &Buffer{Samples: samples, SampleRate: SampleRate, Channels: Channels}
}

// FrameCount returns the number of sample frames (samples per channel).
func (b *Buffer) FrameCount() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the buffer's playback length.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate == 0 {
		return 0
	}
	return time.Duration(b.FrameCount()) * time.Second / time.Duration(b.SampleRate)
}

// Seconds returns the buffer duration in seconds.
func (b *Buffer) Seconds() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(b.FrameCount()) / float64(b.SampleRate)
}

// SamplesToBytes converts int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}
