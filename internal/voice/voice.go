// Package voice adds optional speech input and output around the question
// pipeline: transcribe a recorded question, answer it, synthesize the answer.
package voice

import (
	"context"
	"fmt"

	"github.com/kexuanli/askdocs/internal/config"
)

// Transcriber converts recorded speech (a WAV payload) to text.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
	Name() string
}

// Synthesizer converts text to speech, returning a WAV payload.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Name() string
}

// NewTranscriber builds the speech-to-text backend from configuration.
func NewTranscriber(cfg config.STTConfig) (Transcriber, error) {
	switch cfg.Backend {
	case config.BackendOpenAI:
		key, err := config.RequireAPIKey(config.BackendOpenAI)
		if err != nil {
			return nil, err
		}
		return NewOpenAITranscriber(key, cfg.Model, ""), nil
	case config.BackendDashScope:
		key, err := config.RequireAPIKey(config.BackendDashScope)
		if err != nil {
			return nil, err
		}
		return NewDashScopeTranscriber(key, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported speech-to-text backend: %s", cfg.Backend)
	}
}

// NewSynthesizer builds the text-to-speech backend from configuration.
func NewSynthesizer(cfg config.TTSConfig) (Synthesizer, error) {
	switch cfg.Backend {
	case config.BackendOpenAI:
		key, err := config.RequireAPIKey(config.BackendOpenAI)
		if err != nil {
			return nil, err
		}
		return NewOpenAISynthesizer(key, cfg.Model, cfg.Voice), nil
	case config.BackendDashScope:
		key, err := config.RequireAPIKey(config.BackendDashScope)
		if err != nil {
			return nil, err
		}
		return NewDashScopeSynthesizer(key, cfg.Model, cfg.Voice), nil
	default:
		return nil, fmt.Errorf("unsupported text-to-speech backend: %s", cfg.Backend)
	}
}
