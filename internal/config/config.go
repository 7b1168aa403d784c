package config

import (
	"os"
	"strconv"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Speech service connection
	SpeechAPIURL string
	SpeechAPIKey string

	// OpenAI backend (used when Engine is "openai")
	OpenAIKey   string
	OpenAIModel string

	// Engine selects the synthesis backend: "rest" or "openai"
	Engine string

	// Server
	Port int

	// Studio behavior
	DefaultVoice string
	BassBoost    int // initial bass boost level, 0-10
	VizHeight    int // canvas height bar heights are scaled to
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		SpeechAPIURL: envStr("SPEECH_API_URL", "http://speech:8000"),
		SpeechAPIKey: envStr("SPEECH_API_KEY", ""),

		OpenAIKey:   envStr("OPENAI_API_KEY", ""),
		OpenAIModel: envStr("OPENAI_TTS_MODEL", "tts-1"),

		Engine: envStr("STUDIO_ENGINE", "rest"),

		Port: envInt("STUDIO_PORT", 8080),

		DefaultVoice: envStr("STUDIO_VOICE", "alloy"),
		BassBoost:    envInt("STUDIO_BASS_BOOST", 0),
		VizHeight:    envInt("STUDIO_VIZ_HEIGHT", 200),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
