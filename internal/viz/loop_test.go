package viz

import (
	"testing"
	"time"

	"github.com/voicesmith/voicesmith/internal/audio"
)

func TestRenderScalesToHeight(t *testing.T) {
	l := NewLoop(nil, NewHub(), 200)
	bins := make([]float64, audio.SpectrumBins)
	bins[0] = 0
	bins[1] = 0.5
	bins[2] = 1
	bins[3] = 1.7  // out of range, clamped
	bins[4] = -0.2 // out of range, clamped

	f := l.render(bins, 1500*time.Millisecond, 3*time.Second)
	if len(f.Bars) != audio.SpectrumBins {
		t.Fatalf("rendered %d bars, want %d", len(f.Bars), audio.SpectrumBins)
	}

	wantHeights := []int{0, 100, 200, 200, 0}
	for i, want := range wantHeights {
		if f.Bars[i].Height != want {
			t.Errorf("bar %d height = %d, want %d", i, f.Bars[i].Height, want)
		}
	}
	if f.Position != 1.5 || f.Duration != 3 {
		t.Errorf("frame position/duration = %v/%v, want 1.5/3", f.Position, f.Duration)
	}
}

func TestRenderGradient(t *testing.T) {
	l := NewLoop(nil, NewHub(), 100)
	bins := make([]float64, audio.SpectrumBins)
	f := l.render(bins, 0, 0)

	first := f.Bars[0].Color
	last := f.Bars[len(f.Bars)-1].Color
	if first == last {
		t.Errorf("gradient endpoints identical (%s), want per-bar colors", first)
	}
	for i, b := range f.Bars {
		if len(b.Color) != 7 || b.Color[0] != '#' {
			t.Fatalf("bar %d color = %q, want #rrggbb", i, b.Color)
		}
	}
}

func TestLoopStopsAfterPause(t *testing.T) {
	engine := audio.NewEngine()
	n := int(0.5 * float64(audio.SampleRate))
	engine.SetClip(audio.NewBuffer(make([]int16, n)), nil)

	loop := NewLoop(engine, NewHub(), DefaultHeight)
	engine.SetVisualizer(loop)

	if err := engine.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if !loop.Running() {
		t.Fatal("loop not running while playing")
	}

	engine.Pause()

	// The loop must stop scheduling within one tick of the pause.
	deadline := time.Now().Add(500 * time.Millisecond)
	for loop.Running() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if loop.Running() {
		t.Error("visualization loop still scheduled after pause")
	}
}

func TestLoopStopsAtNaturalEnd(t *testing.T) {
	engine := audio.NewEngine()
	n := int(0.1 * float64(audio.SampleRate))
	engine.SetClip(audio.NewBuffer(make([]int16, n)), nil)

	loop := NewLoop(engine, NewHub(), DefaultHeight)
	engine.SetVisualizer(loop)

	if err := engine.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for loop.Running() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if loop.Running() {
		t.Error("visualization loop survived natural end of playback")
	}
}

func TestLoopSurvivesPausePlayCycle(t *testing.T) {
	engine := audio.NewEngine()
	n := int(1.0 * float64(audio.SampleRate))
	engine.SetClip(audio.NewBuffer(make([]int16, n)), nil)

	loop := NewLoop(engine, NewHub(), DefaultHeight)
	engine.SetVisualizer(loop)

	for i := 0; i < 3; i++ {
		if err := engine.Play(); err != nil {
			t.Fatalf("Play: %v", err)
		}
		time.Sleep(60 * time.Millisecond)
		engine.Pause()
	}
	engine.Stop()

	deadline := time.Now().Add(500 * time.Millisecond)
	for loop.Running() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if loop.Running() {
		t.Error("stale render task left behind by pause/play cycles")
	}
}
