// Package viz runs the per-frame visualization loop: while audio plays it
// samples the session's spectrum analyzer, renders the magnitudes as a bar
// chart, and pushes the frames to websocket subscribers for the canvas.
package viz

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/voicesmith/voicesmith/internal/audio"
)

// DefaultHeight is the canvas height bar heights are scaled to.
const DefaultHeight = 200

// tickInterval approximates a display refresh.
const tickInterval = 33 * time.Millisecond

// Bar is one rendered spectrum bar.
type Bar struct {
	Height int    `json:"h"`
	Color  string `json:"c"`
}

// Frame is one rendered visualization tick, sent to subscribers as JSON.
type Frame struct {
	Bars     []Bar   `json:"bars"`
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

// Controller is the slice of the playback engine the loop needs.
type Controller interface {
	IsPlaying() bool
	Status() (state audio.State, position, duration time.Duration)
}

// Loop drives rendering while playback is live. It implements the
// engine's Visualizer hook: each session start spawns a self-rescheduling
// ticker task that terminates on its own as soon as the controller stops
// reporting Playing, so no timer outlives a pause or a natural end.
type Loop struct {
	controller Controller
	hub        *Hub
	height     int
	palette    []string

	mu      sync.Mutex
	gen     int // invalidates loops from superseded sessions
	running atomic.Int32
}

// NewLoop creates a visualization loop rendering to the given hub.
func NewLoop(c Controller, hub *Hub, height int) *Loop {
	if height <= 0 {
		height = DefaultHeight
	}
	return &Loop{
		controller: c,
		hub:        hub,
		height:     height,
		palette:    buildPalette(audio.SpectrumBins),
	}
}

// SessionStarted begins rendering the new session's analyzer. A loop
// still draining from a previous session is invalidated by the
// generation bump rather than stopped synchronously.
func (l *Loop) SessionStarted(a *audio.Analyzer) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.mu.Unlock()
	go l.run(a, gen)
}

// Running reports whether a render task is currently scheduled.
func (l *Loop) Running() bool {
	return l.running.Load() > 0
}

func (l *Loop) run(a *audio.Analyzer, gen int) {
	l.running.Add(1)
	defer l.running.Add(-1)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		stale := gen != l.gen
		l.mu.Unlock()
		if stale || !l.controller.IsPlaying() {
			return
		}

		bins, ok := a.Snapshot()
		if !ok {
			continue // stale or unfilled analyzer: skip this tick
		}

		_, pos, dur := l.controller.Status()
		l.hub.Broadcast(l.render(bins, pos, dur))
	}
}

// render scales bin magnitudes to bar heights on the canvas and attaches
// each bar's gradient color.
func (l *Loop) render(bins []float64, pos, dur time.Duration) Frame {
	bars := make([]Bar, len(bins))
	for i, v := range bins {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		bars[i] = Bar{
			Height: int(v * float64(l.height)),
			Color:  l.palette[i%len(l.palette)],
		}
	}
	return Frame{
		Bars:     bars,
		Position: pos.Seconds(),
		Duration: dur.Seconds(),
	}
}

// buildPalette interpolates a low-to-high frequency color gradient.
func buildPalette(n int) []string {
	const (
		r0, g0, b0 = 56, 189, 248 // low bins: sky blue
		r1, g1, b1 = 236, 72, 153 // high bins: pink
	)
	palette := make([]string, n)
	for i := range palette {
		t := float64(i) / float64(n-1)
		r := int(r0 + t*(r1-r0))
		g := int(g0 + t*(g1-g0))
		b := int(b0 + t*(b1-b0))
		palette[i] = fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return palette
}
