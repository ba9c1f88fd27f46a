package config

// DefaultExcludes are glob patterns excluded from ingestion by default.
var DefaultExcludes = []string{
	".git/**",
	".askdocs/**",
	"**/.DS_Store",
	"**/*.tmp",
	"**/~$*",
}

// DefaultMaxFileSize is the largest document file considered for ingestion (32 MB).
const DefaultMaxFileSize int64 = 32 << 20

// DefaultConfig returns a Config with sensible defaults for a fully local
// setup (Ollama embeddings and LLM, OpenAI voice backends).
func DefaultConfig() *Config {
	return &Config{
		DocsDir:    "./docs",
		StoreDir:   "./data/askdocs",
		Collection: "local_knowledge",

		ChunkSize:           800,
		ChunkOverlap:        120,
		TopK:                4,
		SimilarityThreshold: 0,

		Include:     []string{"**"},
		Exclude:     DefaultExcludes,
		MaxFileSize: DefaultMaxFileSize,

		Embedding: EmbeddingConfig{
			Backend:    BackendOllama,
			Model:      "nomic-embed-text",
			Dimensions: 768,
		},
		LLM: LLMConfig{
			Backend:     BackendOllama,
			Model:       "qwen2.5:3b",
			Temperature: 0.6,
			MaxTokens:   1024,
		},
		STT: STTConfig{
			Backend: BackendOpenAI,
			Model:   "whisper-1",
		},
		TTS: TTSConfig{
			Backend: BackendOpenAI,
			Model:   "tts-1",
			Voice:   "alloy",
		},
		Voice: VoiceConfig{
			AutoTTS: true,
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// Preset is a named configuration template for a knowledge base.
type Preset struct {
	Name         string
	DocsDir      string
	StoreDir     string
	Collection   string
	ChunkSize    int
	ChunkOverlap int
}

// Presets are ready-made knowledge base layouts selectable from `askdocs init`.
var Presets = []Preset{
	{
		Name:         "museum",
		DocsDir:      "./docs/museum",
		StoreDir:     "./data/museum",
		Collection:   "museum_knowledge",
		ChunkSize:    800,
		ChunkOverlap: 120,
	},
	{
		Name:         "enterprise",
		DocsDir:      "./docs/enterprise",
		StoreDir:     "./data/enterprise",
		Collection:   "enterprise_docs",
		ChunkSize:    1000,
		ChunkOverlap: 150,
	},
	{
		Name:         "personal",
		DocsDir:      "./docs/personal",
		StoreDir:     "./data/personal",
		Collection:   "personal_notes",
		ChunkSize:    600,
		ChunkOverlap: 80,
	},
}

// Apply overlays the preset onto the config.
func (p Preset) Apply(c *Config) {
	c.DocsDir = p.DocsDir
	c.StoreDir = p.StoreDir
	c.Collection = p.Collection
	c.ChunkSize = p.ChunkSize
	c.ChunkOverlap = p.ChunkOverlap
}
