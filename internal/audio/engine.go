package audio

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"
)

// ErrNotReady is returned by Play when there is no clip to play or the
// engine has been closed. Callers treat it as a disabled control, not a
// failure.
var ErrNotReady = errors.New("audio: not ready")

// State is the playback state machine position.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// Visualizer is notified when a playback session starts so it can begin
// sampling the session's analyzer.
type Visualizer interface {
	SessionStarted(a *Analyzer)
}

// session is the transient per-play-attempt state. Exactly one session
// may be live at a time; its graph is released on every exit path.
type session struct {
	graph *Graph
	stop  chan struct{} // closed by pause/stop to halt the pump
	done  chan struct{} // closed by the pump on exit
}

// Engine is the single source of truth for playback. It owns the state
// machine (stopped/playing/paused), the elapsed-time bookkeeping across
// pause/resume cycles, and the lifecycle of the per-session signal
// graph. All state mutation happens behind one mutex so start/stop
// transitions are serialized.
type Engine struct {
	frameCh chan []int16

	mu           sync.Mutex
	state        State
	buf          *Buffer
	encoded      []byte // encoded blob of the current clip, for export
	bassLevel    int
	pausedOffset float64   // seconds, always in [0, duration)
	startRef     time.Time // wall-clock reference: now - startRef = elapsed
	sess         *session
	viz          Visualizer
	closed       bool
}

// NewEngine creates a stopped engine with no clip loaded.
func NewEngine() *Engine {
	return &Engine{
		frameCh: make(chan []int16, 100),
	}
}

// Frames returns the channel of outgoing PCM frames (20ms each), the
// engine's connection to the live output bus.
func (e *Engine) Frames() <-chan []int16 {
	return e.frameCh
}

// SetVisualizer registers the visualization loop hook.
func (e *Engine) SetVisualizer(v Visualizer) {
	e.mu.Lock()
	e.viz = v
	e.mu.Unlock()
}

// SetClip replaces the current clip. An active session is stopped first
// so no audio from the old buffer survives the swap; the paused offset
// resets to zero.
func (e *Engine) SetClip(buf *Buffer, encoded []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.buf = buf
	e.encoded = encoded
	if buf != nil {
		log.Printf("Clip loaded: %d frames (%.2fs)", buf.FrameCount(), buf.Seconds())
	}
}

// Play starts or resumes playback. With no clip loaded it returns
// ErrNotReady; if already playing it is a no-op. A fresh signal graph is
// built per session, seeded with the current bass level and started at
// the saved offset.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.buf == nil || len(e.buf.Samples) == 0 {
		return ErrNotReady
	}
	if e.state == StatePlaying {
		return nil
	}

	offset := math.Mod(e.pausedOffset, e.buf.Seconds())
	graph := BuildGraph(e.buf, BassGainDB(e.bassLevel))
	graph.Start(offset)

	s := &session{
		graph: graph,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	e.sess = s
	e.startRef = time.Now().Add(-time.Duration(offset * float64(time.Second)))
	e.state = StatePlaying

	go e.pump(s)
	if e.viz != nil {
		e.viz.SessionStarted(graph.Analyzer())
	}

	log.Printf("Playback started at %.2fs (bass %d)", offset, e.bassLevel)
	return nil
}

// Pause halts the current session, captures the elapsed offset for a
// later resume, and releases the graph. No-op unless playing.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePlaying || e.sess == nil {
		return
	}

	s := e.sess
	e.sess = nil
	close(s.stop)
	<-s.done // teardown strictly precedes any later start
	s.graph.Release()

	offset := time.Since(e.startRef).Seconds()
	if offset < 0 {
		offset = 0
	}
	e.pausedOffset = math.Mod(offset, e.buf.Seconds())
	e.state = StatePaused
	log.Printf("Playback paused at %.2fs", e.pausedOffset)
}

// Stop tears down any active session and resets the offset to zero.
// Stopping an already-stopped engine is a no-op, never an error.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// stopLocked is the defensive teardown shared by Stop and SetClip.
// Caller holds e.mu.
func (e *Engine) stopLocked() {
	if e.sess != nil {
		s := e.sess
		e.sess = nil
		close(s.stop)
		<-s.done
		s.graph.Release()
	}
	e.pausedOffset = 0
	e.state = StateStopped
}

// SetBassBoost sets the bass boost level (clamped to 0-10). A live
// session's filter is retargeted smoothly without stopping or
// restarting the source; otherwise the level is remembered for the next
// Play.
func (e *Engine) SetBassBoost(level int) {
	if level < 0 {
		level = 0
	}
	if level > BassBoostMax {
		level = BassBoostMax
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.bassLevel = level
	if e.sess != nil {
		e.sess.graph.Filter().SetTargetGainDB(BassGainDB(level))
	}
}

// BassBoost returns the current bass boost level.
func (e *Engine) BassBoost() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bassLevel
}

// IsPlaying reports whether a session is currently live.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StatePlaying
}

// Status returns the state, playback position, and clip duration.
func (e *Engine) Status() (state State, position, duration time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.buf != nil {
		duration = e.buf.Duration()
	}
	switch e.state {
	case StatePlaying:
		position = time.Since(e.startRef)
		if position > duration {
			position = duration
		}
	case StatePaused:
		position = time.Duration(e.pausedOffset * float64(time.Second))
	}
	return e.state, position, duration
}

// Export materializes the current clip as a downloadable artifact with a
// timestamp-based filename. The encoded blob is used when present;
// otherwise the buffer is encoded as mono 24kHz PCM WAV. Returns
// ok=false when no clip is loaded.
func (e *Engine) Export() (filename string, data []byte, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.buf == nil && len(e.encoded) == 0 {
		return "", nil, false
	}
	filename = fmt.Sprintf("speech-%d.wav", time.Now().UnixMilli())
	if len(e.encoded) > 0 {
		return filename, e.encoded, true
	}
	return filename, EncodeWAV(e.buf.Samples, e.buf.SampleRate, e.buf.Channels), true
}

// Close stops playback and shuts the frame channel down. The engine
// rejects Play afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.stopLocked()
	e.closed = true
	close(e.frameCh)
}

// pump feeds frames from the graph to the output bus at real-time rate.
// It exits when the source is exhausted or the session is halted, and
// always fires the end-of-stream callback on the way out -- both paths,
// matching the output primitive's behavior -- leaving sourceEnded to
// tell them apart.
func (e *Engine) pump(s *session) {
	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()
	defer func() {
		close(s.done)
		e.sourceEnded(s)
	}()

	for {
		frame, ok := s.graph.NextFrame()
		if !ok {
			return
		}
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}
		select {
		case e.frameCh <- frame:
		case <-s.stop:
			return
		}
	}
}

// sourceEnded is the end-of-stream callback. It fires on natural
// completion and on explicit halt alike, so it recomputes the elapsed
// time and only treats the event as completion when elapsed covers the
// whole clip; anything shorter was a pause or stop that already owns
// the state transition.
func (e *Engine) sourceEnded(s *session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess != s {
		return // session already torn down elsewhere
	}
	elapsed := time.Since(e.startRef).Seconds()
	if elapsed < e.buf.Seconds()-2*FrameDuration.Seconds() {
		return
	}

	s.graph.Release()
	e.sess = nil
	e.state = StateStopped
	e.pausedOffset = 0
	log.Printf("Playback finished (%.2fs)", e.buf.Seconds())
}
