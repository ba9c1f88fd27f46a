package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kexuanli/askdocs/internal/config"
	"github.com/kexuanli/askdocs/internal/embeddings"
	"github.com/kexuanli/askdocs/internal/llm"
	"github.com/kexuanli/askdocs/internal/loader"
	"github.com/kexuanli/askdocs/internal/logging"
	"github.com/kexuanli/askdocs/internal/manifest"
	"github.com/kexuanli/askdocs/internal/rag"
	"github.com/kexuanli/askdocs/internal/vectordb"
)

// loadConfig reads and validates the config file named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger honoring --verbose.
func newLogger() *zap.Logger {
	return logging.Must(verbose)
}

// stack bundles the wired dependencies most commands need.
type stack struct {
	cfg      *config.Config
	logger   *zap.Logger
	embedder embeddings.Embedder
	store    *vectordb.ChromemStore
	manifest *manifest.DB
}

// buildStack wires config, embedder, vector store and manifest. Callers own
// Close.
func buildStack() (*stack, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger()

	embedder, err := embeddings.NewFromConfig(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	store, err := vectordb.NewChromemStore(cfg.StoreDir, cfg.Collection, embedder)
	if err != nil {
		return nil, fmt.Errorf("opening vector store: %w", err)
	}

	mdb, err := manifest.Open(manifest.DefaultPath(cfg.StoreDir))
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}

	return &stack{
		cfg:      cfg,
		logger:   logger,
		embedder: embedder,
		store:    store,
		manifest: mdb,
	}, nil
}

func (s *stack) Close() {
	if s.manifest != nil {
		_ = s.manifest.Close()
	}
	_ = s.logger.Sync()
}

// newEngine wires the question pipeline on top of a stack.
func (s *stack) newEngine() (*rag.Engine, error) {
	provider, err := llm.NewFromConfig(s.cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("creating llm provider: %w", err)
	}
	return rag.NewEngine(s.store, s.embedder, provider, s.manifest, rag.EngineOptions{
		Collection:  s.cfg.Collection,
		TopK:        s.cfg.TopK,
		Threshold:   float32(s.cfg.SimilarityThreshold),
		Model:       s.cfg.LLM.Model,
		MaxTokens:   s.cfg.LLM.MaxTokens,
		Temperature: s.cfg.LLM.Temperature,
	}, s.logger), nil
}

// newLoader builds the document loader from config.
func (s *stack) newLoader() *loader.Loader {
	return loader.New(loader.Options{
		DocsDir:     s.cfg.DocsDir,
		Include:     s.cfg.Include,
		Exclude:     s.cfg.Exclude,
		MaxFileSize: s.cfg.MaxFileSize,
	}, s.logger)
}
