package tts

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
	"github.com/voicesmith/voicesmith/internal/audio"
)

// OpenAI is the OpenAI speech API backend. Its WAV output is already
// 24kHz mono, the engine's native format.
type OpenAI struct {
	client *openai.Client
	model  openai.SpeechModel
}

// NewOpenAI creates an OpenAI synthesis backend.
func NewOpenAI(apiKey, model string) *OpenAI {
	m := openai.SpeechModel(model)
	if model == "" {
		m = openai.TTSModel1
	}
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  m,
	}
}

// Info implements Engine.
func (o *OpenAI) Info() EngineInfo {
	return EngineInfo{
		Name:       "openai",
		SampleRate: audio.SampleRate,
		Channels:   audio.Channels,
		Online:     true,
	}
}

// WaitForReady implements Engine. The API has no health endpoint worth
// polling; readiness is just having credentials.
func (o *OpenAI) WaitForReady(ctx context.Context) error {
	return ctx.Err()
}

// Synthesize implements Engine.
func (o *OpenAI) Synthesize(ctx context.Context, req Request) (*Clip, error) {
	voice := openai.SpeechVoice(req.Voice)
	if req.Voice == "" {
		voice = openai.VoiceAlloy
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          o.model,
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	blob, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("openai speech read: %w", err)
	}
	return clipFromWAV(req, blob)
}
