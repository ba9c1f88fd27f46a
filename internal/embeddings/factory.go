package embeddings

import (
	"fmt"

	"github.com/kexuanli/askdocs/internal/config"
)

const defaultOllamaDimensions = 768

// NewFromConfig creates an Embedder for the configured backend. Remote
// backends fail fast when their API key is missing.
func NewFromConfig(cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Backend {
	case config.BackendOpenAI:
		apiKey, err := config.RequireAPIKey(config.BackendOpenAI)
		if err != nil {
			return nil, err
		}
		return NewOpenAIEmbedder(apiKey, OpenAIModel(cfg.Model), cfg.BaseURL), nil

	case config.BackendOllama:
		dims := cfg.Dimensions
		if dims <= 0 {
			dims = defaultOllamaDimensions
		}
		return NewOllamaEmbedder(cfg.Model, dims, cfg.BaseURL), nil

	default:
		return nil, fmt.Errorf("unsupported embedding backend: %s", cfg.Backend)
	}
}
