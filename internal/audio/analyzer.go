package audio

import (
	"math"
	"sync"
)

const (
	// FFTSize is the analyzer resolution. Half of it (128) is the number
	// of frequency bins exposed per snapshot, sized for the bar chart.
	FFTSize = 256

	// SpectrumBins is the number of magnitudes in a snapshot.
	SpectrumBins = FFTSize / 2

	// analyzerDecay smooths bin magnitudes across snapshots so the bars
	// fall gradually instead of flickering.
	analyzerDecay = 0.3
)

// Analyzer taps the signal flowing through a graph and exposes a running
// frequency-magnitude snapshot of it. Feeding and snapshotting happen on
// different goroutines (pump vs visualization loop).
type Analyzer struct {
	mu       sync.Mutex
	ring     []float64 // last FFTSize mono samples
	pos      int
	filled   int
	bins     []float64 // smoothed magnitudes, 0..1
	real     []float64
	imag     []float64
	released bool
}

// NewAnalyzer creates an analyzer with empty state.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		ring: make([]float64, FFTSize),
		bins: make([]float64, SpectrumBins),
		real: make([]float64, FFTSize),
		imag: make([]float64, FFTSize),
	}
}

// Feed appends one frame of samples to the analysis window.
// A released analyzer ignores the frame.
func (a *Analyzer) Feed(frame []int16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return
	}
	for _, s := range frame {
		a.ring[a.pos] = float64(s) / 32768.0
		a.pos = (a.pos + 1) % FFTSize
	}
	a.filled += len(frame)
	if a.filled > FFTSize {
		a.filled = FFTSize
	}
}

// Snapshot computes the current per-bin magnitude distribution.
// Returns ok=false when the analyzer has been released or has not yet
// seen a full window; callers treat that as a no-op for the tick.
func (a *Analyzer) Snapshot() ([]float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released || a.filled < FFTSize {
		return nil, false
	}

	// Oldest-first copy with a Hann window.
	for i := 0; i < FFTSize; i++ {
		s := a.ring[(a.pos+i)%FFTSize]
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(FFTSize-1)))
		a.real[i] = s * w
		a.imag[i] = 0
	}

	fft(a.real, a.imag)

	out := make([]float64, SpectrumBins)
	for i := 0; i < SpectrumBins; i++ {
		mag := math.Sqrt(a.real[i]*a.real[i]+a.imag[i]*a.imag[i]) / (FFTSize / 4)
		if mag > 1 {
			mag = 1
		}
		a.bins[i] = a.bins[i]*analyzerDecay + mag*(1-analyzerDecay)
		out[i] = a.bins[i]
	}
	return out, true
}

// Release detaches the analyzer from its graph. Later Feed and Snapshot
// calls become no-ops; a visualization tick holding a stale reference
// must never fail.
func (a *Analyzer) Release() {
	a.mu.Lock()
	a.released = true
	a.mu.Unlock()
}

// fft runs an in-place iterative radix-2 Cooley-Tukey transform.
// len(re) must be a power of two and equal to len(im).
func fft(re, im []float64) {
	n := len(re)

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for size := 2; size <= n; size <<= 1 {
		ang := -2 * math.Pi / float64(size)
		wr, wi := math.Cos(ang), math.Sin(ang)
		for start := 0; start < n; start += size {
			cr, ci := 1.0, 0.0
			for k := 0; k < size/2; k++ {
				even := start + k
				odd := start + k + size/2
				tr := re[odd]*cr - im[odd]*ci
				ti := re[odd]*ci + im[odd]*cr
				re[odd] = re[even] - tr
				im[odd] = im[even] - ti
				re[even] += tr
				im[even] += ti
				cr, ci = cr*wr-ci*wi, cr*wi+ci*wr
			}
		}
	}
}
