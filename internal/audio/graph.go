package audio

import "sync"

// Graph is the per-session processing chain:
//
//	buffer source -> low-shelf filter -> spectrum analyzer -> frame output
//
// A graph is owned by exactly one playback session. Construction has no
// side effects; nothing moves until Start seeds the source cursor. After
// Release every stage is disconnected and all operations are no-ops, so
// a session that forgets nothing can never leak nodes across play/pause
// cycles.
type Graph struct {
	buf      *Buffer
	filter   *LowShelf
	analyzer *Analyzer

	mu       sync.Mutex
	pos      int // next sample index into buf.Samples
	started  bool
	released bool
}

// BuildGraph assembles a fresh chain around the buffer. The filter's
// initial gain is set directly from gainDB, with no smoothing.
func BuildGraph(buf *Buffer, gainDB float64) *Graph {
	return &Graph{
		buf:      buf,
		filter:   NewLowShelf(buf.SampleRate, gainDB),
		analyzer: NewAnalyzer(),
	}
}

// Filter returns the shelf filter for live gain retargeting.
func (g *Graph) Filter() *LowShelf { return g.filter }

// Analyzer returns the spectrum analyzer for the visualization loop.
func (g *Graph) Analyzer() *Analyzer { return g.analyzer }

// Start positions the source cursor at the given offset in seconds.
func (g *Graph) Start(offsetSeconds float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return
	}
	pos := int(offsetSeconds*float64(g.buf.SampleRate)) * g.buf.Channels
	if pos < 0 {
		pos = 0
	}
	if pos > len(g.buf.Samples) {
		pos = len(g.buf.Samples)
	}
	g.pos = pos
	g.started = true
}

// NextFrame pulls one frame through the chain: reads FrameSize samples
// from the source, filters them, feeds the analyzer, and returns the
// processed frame. The final partial frame is zero-padded. Returns
// ok=false once the source is exhausted, before Start, or after Release.
func (g *Graph) NextFrame() ([]int16, bool) {
	g.mu.Lock()
	if g.released || !g.started || g.pos >= len(g.buf.Samples) {
		g.mu.Unlock()
		return nil, false
	}

	frame := make([]int16, FrameSize)
	n := copy(frame, g.buf.Samples[g.pos:])
	g.pos += n
	g.mu.Unlock()

	g.filter.Process(frame)
	g.analyzer.Feed(frame)
	return frame, true
}

// Release disconnects every stage and frees the source cursor. Safe to
// call more than once.
func (g *Graph) Release() {
	g.mu.Lock()
	if g.released {
		g.mu.Unlock()
		return
	}
	g.released = true
	g.mu.Unlock()
	g.analyzer.Release()
}
