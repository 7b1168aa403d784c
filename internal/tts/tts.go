// Package tts talks to speech synthesis backends. Each backend turns text
// plus voice/style parameters into a Clip: the decoded sample buffer the
// playback engine consumes and the encoded blob kept for export.
package tts

import (
	"context"

	"github.com/voicesmith/voicesmith/internal/audio"
)

// Request describes one synthesis job.
type Request struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
	Style string `json:"style,omitempty"`
}

// Clip is a completed synthesis result. The buffer and blob are owned by
// the host for the lifetime of one result and replaced wholesale by the
// next one.
type Clip struct {
	ID      string
	Text    string
	Voice   string
	Style   string
	Buffer  *audio.Buffer
	Encoded []byte // WAV container, served verbatim on export
}

// EngineInfo describes a backend's fixed output format.
type EngineInfo struct {
	Name       string
	SampleRate int
	Channels   int
	Online     bool
}

// Engine is a speech synthesis backend.
type Engine interface {
	// Synthesize converts text to a playable clip. The returned buffer is
	// always engine format: 24kHz mono 16-bit PCM.
	Synthesize(ctx context.Context, req Request) (*Clip, error)

	// Info returns the backend's capabilities.
	Info() EngineInfo

	// WaitForReady blocks until the backend is reachable or ctx expires.
	WaitForReady(ctx context.Context) error
}
