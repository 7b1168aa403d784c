package audio

import (
	"math"
	"testing"
)

// feedSine pushes n samples of a sine at the given frequency.
func feedSine(a *Analyzer, freq float64, n int) {
	frame := make([]int16, FrameSize)
	for fed := 0; fed < n; fed += FrameSize {
		for i := range frame {
			phase := 2 * math.Pi * freq * float64(fed+i) / SampleRate
			frame[i] = int16(16000 * math.Sin(phase))
		}
		a.Feed(frame)
	}
}

func TestSnapshotNeedsFullWindow(t *testing.T) {
	a := NewAnalyzer()
	if _, ok := a.Snapshot(); ok {
		t.Error("Snapshot ok with no samples fed")
	}

	a.Feed(make([]int16, 100)) // less than FFTSize
	if _, ok := a.Snapshot(); ok {
		t.Error("Snapshot ok with partial window")
	}
}

func TestSnapshotSize(t *testing.T) {
	a := NewAnalyzer()
	feedSine(a, 1000, FFTSize*2)
	bins, ok := a.Snapshot()
	if !ok {
		t.Fatal("Snapshot not ok after full window")
	}
	if len(bins) != SpectrumBins {
		t.Errorf("snapshot size = %d, want %d (half the resolution)", len(bins), SpectrumBins)
	}
}

func TestSnapshotPeakBin(t *testing.T) {
	// A pure tone at bin k's center frequency should peak at bin k.
	const k = 16
	freq := float64(k) * SampleRate / FFTSize // 1500 Hz

	a := NewAnalyzer()
	feedSine(a, freq, FFTSize*4)
	bins, ok := a.Snapshot()
	if !ok {
		t.Fatal("Snapshot not ok")
	}

	peak := 0
	for i := range bins {
		if bins[i] > bins[peak] {
			peak = i
		}
	}
	if peak < k-1 || peak > k+1 {
		t.Errorf("peak bin = %d, want ~%d for a %.0f Hz tone", peak, k, freq)
	}
}

func TestSnapshotMagnitudesBounded(t *testing.T) {
	a := NewAnalyzer()
	frame := make([]int16, FrameSize)
	for i := range frame {
		frame[i] = 32767 // worst case
	}
	a.Feed(frame)
	bins, ok := a.Snapshot()
	if !ok {
		t.Fatal("Snapshot not ok")
	}
	for i, v := range bins {
		if v < 0 || v > 1 {
			t.Errorf("bin %d = %v, want within [0,1]", i, v)
		}
	}
}

func TestReleasedAnalyzerNoOps(t *testing.T) {
	a := NewAnalyzer()
	feedSine(a, 1000, FFTSize*2)
	a.Release()

	if _, ok := a.Snapshot(); ok {
		t.Error("Snapshot ok after Release, want stale-access no-op")
	}
	a.Feed(make([]int16, FrameSize)) // must not panic
	a.Release()                      // double release must not panic
}

func TestFFTImpulse(t *testing.T) {
	// An impulse has a flat magnitude spectrum.
	n := 8
	re := make([]float64, n)
	im := make([]float64, n)
	re[0] = 1

	fft(re, im)
	for i := 0; i < n; i++ {
		mag := math.Sqrt(re[i]*re[i] + im[i]*im[i])
		if math.Abs(mag-1) > 1e-9 {
			t.Errorf("bin %d magnitude = %v, want 1", i, mag)
		}
	}
}

func TestFFTDC(t *testing.T) {
	// A constant signal concentrates everything in bin 0.
	n := 16
	re := make([]float64, n)
	im := make([]float64, n)
	for i := range re {
		re[i] = 1
	}

	fft(re, im)
	if math.Abs(re[0]-float64(n)) > 1e-9 {
		t.Errorf("DC bin = %v, want %d", re[0], n)
	}
	for i := 1; i < n; i++ {
		mag := math.Sqrt(re[i]*re[i] + im[i]*im[i])
		if mag > 1e-9 {
			t.Errorf("bin %d magnitude = %v, want 0 for DC input", i, mag)
		}
	}
}
