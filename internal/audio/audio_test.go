package audio

import (
	"testing"
	"time"
)

func TestConstants(t *testing.T) {
	// 24kHz * 20ms = 480 samples per frame
	if got := SampleRate * int(FrameDuration/time.Millisecond) / 1000; got != FrameSize {
		t.Errorf("FrameSize mismatch: want %d, got %d", got, FrameSize)
	}
	if FrameBytes != FrameSize*2 {
		t.Errorf("FrameBytes = %d, want %d", FrameBytes, FrameSize*2)
	}
	if Channels != 1 {
		t.Errorf("Channels = %d, want mono", Channels)
	}
}

func TestBufferDuration(t *testing.T) {
	tests := []struct {
		samples int
		want    time.Duration
	}{
		{0, 0},
		{SampleRate, time.Second},
		{SampleRate / 2, 500 * time.Millisecond},
		{SampleRate * 3, 3 * time.Second},
	}
	for _, tt := range tests {
		b := NewBuffer(make([]int16, tt.samples))
		if got := b.Duration(); got != tt.want {
			t.Errorf("Duration(%d samples) = %v, want %v", tt.samples, got, tt.want)
		}
	}
}

func TestBufferFrameCount(t *testing.T) {
	b := NewBuffer(make([]int16, 4800))
	if b.FrameCount() != 4800 {
		t.Errorf("FrameCount = %d, want 4800 (mono)", b.FrameCount())
	}
	if b.Seconds() != 0.2 {
		t.Errorf("Seconds = %v, want 0.2", b.Seconds())
	}
}

func TestSamplesToBytes(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 256}
	buf := SamplesToBytes(samples)
	if len(buf) != len(samples)*2 {
		t.Fatalf("SamplesToBytes length = %d, want %d", len(buf), len(samples)*2)
	}

	// 256 = 0x0100 -> little-endian bytes [0x00, 0x01]
	idx := 5 * 2
	if buf[idx] != 0x00 || buf[idx+1] != 0x01 {
		t.Errorf("Sample 256 encoded as [%02x, %02x], want [00, 01]", buf[idx], buf[idx+1])
	}
}
