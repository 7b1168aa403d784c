package audio

import (
	"math"
	"sync"
)

const (
	// ShelfFrequency is the low-shelf corner frequency in Hz.
	ShelfFrequency = 200.0

	// BassBoostMax is the top of the user-facing bass boost range.
	BassBoostMax = 10

	// smoothingTau is the time constant for gain glides, in seconds.
	// A retargeted gain approaches its new value exponentially instead
	// of stepping, which would click.
	smoothingTau = 0.1
)

// BassGainDB maps a bass boost level (0-10) to shelf gain in decibels.
// The mapping is fixed at 1.5 dB per level (0 -> 0 dB, 10 -> 15 dB).
func BassGainDB(level int) float64 {
	if level < 0 {
		level = 0
	}
	if level > BassBoostMax {
		level = BassBoostMax
	}
	return float64(level) * 1.5
}

// LowShelf is a biquad low-shelf filter (RBJ cookbook, shelf slope 1)
// boosting frequencies below ShelfFrequency. The gain can be retargeted
// while audio flows through it; the applied gain glides toward the
// target with an exponential approach so transitions stay inaudible.
type LowShelf struct {
	mu sync.Mutex

	sampleRate float64
	gainDB     float64 // gain currently applied
	targetDB   float64 // gain we are gliding toward

	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

// NewLowShelf creates a low-shelf filter with the gain set directly
// (no smoothing) from the given dB value.
func NewLowShelf(sampleRate int, gainDB float64) *LowShelf {
	f := &LowShelf{
		sampleRate: float64(sampleRate),
		gainDB:     gainDB,
		targetDB:   gainDB,
	}
	f.computeCoefficients()
	return f
}

// GainDB returns the gain currently applied, in decibels.
func (f *LowShelf) GainDB() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gainDB
}

// TargetGainDB returns the gain the filter is gliding toward.
func (f *LowShelf) TargetGainDB() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.targetDB
}

// SetTargetGainDB retargets the shelf gain. The applied gain approaches
// the new value with time constant smoothingTau as frames are processed.
func (f *LowShelf) SetTargetGainDB(db float64) {
	f.mu.Lock()
	f.targetDB = db
	f.mu.Unlock()
}

// Process filters one frame of samples in place. Called once per frame
// from the playback pump; the gain glide advances one frame interval
// per call.
func (f *LowShelf) Process(frame []int16) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.targetDB != f.gainDB {
		frameDur := float64(len(frame)) / f.sampleRate
		alpha := 1 - math.Exp(-frameDur/smoothingTau)
		f.gainDB += (f.targetDB - f.gainDB) * alpha
		if math.Abs(f.targetDB-f.gainDB) < 0.01 {
			f.gainDB = f.targetDB
		}
		f.computeCoefficients()
	}

	for i, s := range frame {
		x := float64(s)
		y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
		f.x2, f.x1 = f.x1, x
		f.y2, f.y1 = f.y1, y

		if y > 32767 {
			y = 32767
		} else if y < -32768 {
			y = -32768
		}
		frame[i] = int16(y)
	}
}

// computeCoefficients derives biquad coefficients for the current gain.
// Caller holds f.mu.
func (f *LowShelf) computeCoefficients() {
	A := math.Pow(10, f.gainDB/40)
	w0 := 2 * math.Pi * ShelfFrequency / f.sampleRate
	cosw := math.Cos(w0)
	sinw := math.Sin(w0)
	alpha := sinw / 2 // shelf slope S = 1

	sqrtA := math.Sqrt(A)
	b0 := A * ((A + 1) - (A-1)*cosw + 2*sqrtA*alpha)
	b1 := 2 * A * ((A - 1) - (A+1)*cosw)
	b2 := A * ((A + 1) - (A-1)*cosw - 2*sqrtA*alpha)
	a0 := (A + 1) + (A-1)*cosw + 2*sqrtA*alpha
	a1 := -2 * ((A - 1) + (A+1)*cosw)
	a2 := (A + 1) + (A-1)*cosw - 2*sqrtA*alpha

	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
}
