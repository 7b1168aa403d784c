package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/voicesmith/voicesmith/internal/audio"
)

// Client is the generic REST backend: a speech service that accepts a
// JSON synthesis request and answers with a WAV body.
type Client struct {
	apiURL string
	apiKey string
	http   *http.Client
}

// NewClient creates a REST synthesis client.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		apiKey: apiKey,
		http:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Info implements Engine.
func (c *Client) Info() EngineInfo {
	return EngineInfo{
		Name:       "rest",
		SampleRate: audio.SampleRate,
		Channels:   audio.Channels,
		Online:     true,
	}
}

// WaitForReady blocks until the speech service responds to health checks.
func (c *Client) WaitForReady(ctx context.Context) error {
	log.Println("Waiting for speech service to be ready...")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/health", nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				log.Println("Speech service is ready")
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

// synthesizeRequest is the service's /v1/speech request body.
type synthesizeRequest struct {
	Text       string `json:"text"`
	Voice      string `json:"voice"`
	Style      string `json:"style,omitempty"`
	SampleRate int    `json:"sample_rate"`
	Format     string `json:"format"`
}

// Synthesize posts the request and decodes the WAV response.
func (c *Client) Synthesize(ctx context.Context, req Request) (*Clip, error) {
	body, err := json.Marshal(synthesizeRequest{
		Text:       req.Text,
		Voice:      req.Voice,
		Style:      req.Style,
		SampleRate: audio.SampleRate,
		Format:     "wav",
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/v1/speech", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("speech service returned %d: %s", resp.StatusCode, msg)
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("speech response read: %w", err)
	}

	return clipFromWAV(req, blob)
}

// clipFromWAV decodes a WAV blob and checks it matches engine format.
func clipFromWAV(req Request, blob []byte) (*Clip, error) {
	buf, err := audio.DecodeWAV(blob)
	if err != nil {
		return nil, fmt.Errorf("speech response decode: %w", err)
	}
	if buf.SampleRate != audio.SampleRate || buf.Channels != audio.Channels {
		return nil, fmt.Errorf("speech response format %dHz/%dch, need %d/%d",
			buf.SampleRate, buf.Channels, audio.SampleRate, audio.Channels)
	}

	log.Printf("Synthesized %.2fs of speech (voice: %s)", buf.Seconds(), req.Voice)
	return &Clip{
		ID:      uuid.NewString(),
		Text:    req.Text,
		Voice:   req.Voice,
		Style:   req.Style,
		Buffer:  buf,
		Encoded: blob,
	}, nil
}
