package config

// BackendType identifies a model backend (embeddings, LLM, STT or TTS).
type BackendType string

const (
	BackendOpenAI    BackendType = "openai"
	BackendOllama    BackendType = "ollama"
	BackendDashScope BackendType = "dashscope"
)

// EmbeddingConfig selects the embedding backend and model.
type EmbeddingConfig struct {
	Backend    BackendType `yaml:"backend" koanf:"backend"`
	Model      string      `yaml:"model" koanf:"model"`
	BaseURL    string      `yaml:"base_url" koanf:"base_url"`
	Dimensions int         `yaml:"dimensions" koanf:"dimensions"`
}

// LLMConfig selects the answer-generation backend and model.
type LLMConfig struct {
	Backend     BackendType `yaml:"backend" koanf:"backend"`
	Model       string      `yaml:"model" koanf:"model"`
	BaseURL     string      `yaml:"base_url" koanf:"base_url"`
	Temperature float64     `yaml:"temperature" koanf:"temperature"`
	MaxTokens   int         `yaml:"max_tokens" koanf:"max_tokens"`
}

// STTConfig selects the speech-to-text backend and model.
type STTConfig struct {
	Backend BackendType `yaml:"backend" koanf:"backend"`
	Model   string      `yaml:"model" koanf:"model"`
}

// TTSConfig selects the text-to-speech backend, model and voice.
type TTSConfig struct {
	Backend BackendType `yaml:"backend" koanf:"backend"`
	Model   string      `yaml:"model" koanf:"model"`
	Voice   string      `yaml:"voice" koanf:"voice"`
}

// VoiceConfig holds settings for the multimodal runner.
type VoiceConfig struct {
	AutoTTS bool   `yaml:"auto_tts" koanf:"auto_tts"`
	Player  string `yaml:"player" koanf:"player"` // external playback binary; empty = auto-detect
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"` // allow all CORS origins (dev mode)
}

// Config is the top-level askdocs configuration, corresponding to .askdocs.yml.
type Config struct {
	DocsDir    string `yaml:"docs_dir" koanf:"docs_dir"`
	StoreDir   string `yaml:"store_dir" koanf:"store_dir"`
	Collection string `yaml:"collection" koanf:"collection"`

	ChunkSize           int     `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap        int     `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	TopK                int     `yaml:"top_k" koanf:"top_k"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" koanf:"similarity_threshold"`

	Include     []string `yaml:"include" koanf:"include"`
	Exclude     []string `yaml:"exclude" koanf:"exclude"`
	MaxFileSize int64    `yaml:"max_file_size" koanf:"max_file_size"`

	Embedding EmbeddingConfig `yaml:"embedding" koanf:"embedding"`
	LLM       LLMConfig       `yaml:"llm" koanf:"llm"`
	STT       STTConfig       `yaml:"stt" koanf:"stt"`
	TTS       TTSConfig       `yaml:"tts" koanf:"tts"`
	Voice     VoiceConfig     `yaml:"voice" koanf:"voice"`
	Server    ServerConfig    `yaml:"server" koanf:"server"`
}
