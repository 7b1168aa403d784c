package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/voicesmith/voicesmith/internal/audio"
	"github.com/voicesmith/voicesmith/internal/config"
	"github.com/voicesmith/voicesmith/internal/stream"
	"github.com/voicesmith/voicesmith/internal/tts"
	"github.com/voicesmith/voicesmith/internal/viz"
	"github.com/voicesmith/voicesmith/internal/web"
)

func main() {
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Println("voicesmith starting up...")

	// Synthesis backend
	var synth tts.Engine
	switch cfg.Engine {
	case "openai":
		if cfg.OpenAIKey == "" {
			log.Fatal("STUDIO_ENGINE=openai requires OPENAI_API_KEY")
		}
		synth = tts.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel)
	default:
		client := tts.NewClient(cfg.SpeechAPIURL, cfg.SpeechAPIKey)
		healthCtx, healthCancel := context.WithTimeout(ctx, 2*time.Minute)
		if err := client.WaitForReady(healthCtx); err != nil {
			healthCancel()
			log.Fatalf("speech service not available: %v", err)
		}
		healthCancel()
		synth = client
	}
	log.Printf("Synthesis backend: %s", synth.Info().Name)

	// Playback engine
	engine := audio.NewEngine()
	engine.SetBassBoost(cfg.BassBoost)

	// Monitor bus: fan out PCM frames to all listeners
	broadcaster := stream.NewBroadcaster()
	go broadcaster.Run(ctx, engine.Frames())

	// Visualization loop feeding the canvas over websocket
	hub := viz.NewHub()
	engine.SetVisualizer(viz.NewLoop(engine, hub, cfg.VizHeight))

	webrtcHandler := stream.NewWebRTCHandler(broadcaster)

	// HTTP routes
	mux := http.NewServeMux()

	// Web UI
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(web.IndexHTML)
	})

	// Monitor streams and spectrum feed
	mux.Handle("/stream", stream.NewHTTPHandler(broadcaster))
	mux.Handle("/offer", webrtcHandler)
	mux.Handle("/ws/spectrum", hub)

	mux.HandleFunc("/api/speak", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var req tts.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.Voice == "" {
			req.Voice = cfg.DefaultVoice
		}

		clip, err := synth.Synthesize(r.Context(), req)
		if err != nil {
			log.Printf("Synthesis failed: %v", err)
			http.Error(w, "synthesis failed", http.StatusBadGateway)
			return
		}

		// A new result forces a stop of any active session before it
		// becomes the current clip.
		engine.SetClip(clip.Buffer, clip.Encoded)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":       clip.ID,
			"voice":    clip.Voice,
			"duration": clip.Buffer.Seconds(),
		})
	})

	mux.HandleFunc("/api/play", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		if err := engine.Play(); err != nil {
			if errors.Is(err, audio.ErrNotReady) {
				http.Error(w, "no clip loaded", http.StatusConflict)
				return
			}
			http.Error(w, "playback failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})

	mux.HandleFunc("/api/pause", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		engine.Pause()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})

	mux.HandleFunc("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		engine.Stop()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})

	mux.HandleFunc("/api/bass", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Level int `json:"level"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.Level < 0 || req.Level > audio.BassBoostMax {
			http.Error(w, "level must be 0-10", http.StatusBadRequest)
			return
		}
		engine.SetBassBoost(req.Level)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "level": req.Level})
	})

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		state, pos, dur := engine.Status()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		json.NewEncoder(w).Encode(map[string]any{
			"state":       state.String(),
			"is_playing":  state == audio.StatePlaying,
			"position":    pos.Seconds(),
			"duration":    dur.Seconds(),
			"bass_boost":  engine.BassBoost(),
			"listeners":   broadcaster.ListenerCount(),
			"webrtc":      webrtcHandler.PeerCount(),
			"subscribers": hub.SubscriberCount(),
			"engine":      synth.Info().Name,
		})
	})

	mux.HandleFunc("/api/download", func(w http.ResponseWriter, r *http.Request) {
		name, data, ok := engine.Export()
		if !ok {
			http.Error(w, "no clip to export", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(data)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		engine.Close()
		server.Close()
	}()

	log.Printf("voicesmith live on %s", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}
}
