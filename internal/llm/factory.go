package llm

import (
	"fmt"

	"github.com/kexuanli/askdocs/internal/config"
)

// NewFromConfig creates an LLM provider for the configured backend.
// Remote backends fail fast when their API key is missing.
func NewFromConfig(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Backend {
	case config.BackendOpenAI:
		apiKey, err := config.RequireAPIKey(config.BackendOpenAI)
		if err != nil {
			return nil, err
		}
		return NewOpenAIProvider(apiKey, cfg.Model, cfg.BaseURL), nil

	case config.BackendOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model), nil

	default:
		return nil, fmt.Errorf("unsupported llm backend: %s", cfg.Backend)
	}
}
