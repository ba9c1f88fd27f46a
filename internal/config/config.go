// Package config loads and validates the askdocs configuration from
// .askdocs.yml with ASKDOCS_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. Top-level keys map directly
// (ASKDOCS_CHUNK_SIZE -> chunk_size); nested keys use a double
// underscore (ASKDOCS_LLM__MODEL -> llm.model).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("ASKDOCS_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "ASKDOCS_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validEmbeddingBackends is the set of recognized embedding backend values.
var validEmbeddingBackends = map[BackendType]bool{
	BackendOpenAI: true,
	BackendOllama: true,
}

// validLLMBackends is the set of recognized LLM backend values.
var validLLMBackends = map[BackendType]bool{
	BackendOpenAI: true,
	BackendOllama: true,
}

// validVoiceBackends is the set of recognized STT/TTS backend values.
var validVoiceBackends = map[BackendType]bool{
	BackendOpenAI:    true,
	BackendDashScope: true,
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.DocsDir == "" {
		return fmt.Errorf("docs_dir is required")
	}
	if c.StoreDir == "" {
		return fmt.Errorf("store_dir is required")
	}
	if c.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size)")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive")
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [0, 1]")
	}

	if !validEmbeddingBackends[c.Embedding.Backend] {
		return fmt.Errorf("invalid embedding backend %q: must be one of openai, ollama", c.Embedding.Backend)
	}
	if !validLLMBackends[c.LLM.Backend] {
		return fmt.Errorf("invalid llm backend %q: must be one of openai, ollama", c.LLM.Backend)
	}
	if !validVoiceBackends[c.STT.Backend] {
		return fmt.Errorf("invalid stt backend %q: must be one of openai, dashscope", c.STT.Backend)
	}
	if !validVoiceBackends[c.TTS.Backend] {
		return fmt.Errorf("invalid tts backend %q: must be one of openai, dashscope", c.TTS.Backend)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given backend. Local backends have none.
func APIKeyEnvVar(backend BackendType) string {
	switch backend {
	case BackendOpenAI:
		return "OPENAI_API_KEY"
	case BackendDashScope:
		return "DASHSCOPE_API_KEY"
	default:
		return ""
	}
}

// RequireAPIKey resolves the API key for a remote backend, failing with a
// configuration error when it is missing.
func RequireAPIKey(backend BackendType) (string, error) {
	envVar := APIKeyEnvVar(backend)
	if envVar == "" {
		return "", nil
	}
	key := os.Getenv(envVar)
	if key == "" {
		return "", fmt.Errorf("%s environment variable is required for the %s backend", envVar, backend)
	}
	return key, nil
}
