// Package rag wires the ingestion pipeline (load, split, embed, store) and
// the question pipeline (retrieve, prompt, generate) together.
package rag

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kexuanli/askdocs/internal/embeddings"
	"github.com/kexuanli/askdocs/internal/llm"
	"github.com/kexuanli/askdocs/internal/manifest"
	"github.com/kexuanli/askdocs/internal/vectordb"
)

// Citation points at one retrieved chunk that grounded the answer.
type Citation struct {
	Source  string `json:"source"`
	Locator string `json:"locator"`
}

// Answer is the result of one question through the RAG pipeline.
type Answer struct {
	Text         string     `json:"answer"`
	Citations    []Citation `json:"citations"`
	RetrievalMS  float64    `json:"retrieval_ms"`
	GenerationMS float64    `json:"generation_ms"`
}

// Engine answers questions against an ingested collection.
type Engine struct {
	store    vectordb.Store
	provider llm.Provider
	manifest *manifest.DB
	embedder embeddings.Embedder

	collection  string
	topK        int
	threshold   float32
	model       string
	maxTokens   int
	temperature float64

	logger *zap.Logger
}

// EngineOptions configures an Engine.
type EngineOptions struct {
	Collection  string
	TopK        int
	Threshold   float32
	Model       string
	MaxTokens   int
	Temperature float64
}

// NewEngine creates an Engine. manifest may be nil (embedder-consistency
// checking is then skipped); logger may be nil.
func NewEngine(store vectordb.Store, embedder embeddings.Embedder, provider llm.Provider, mdb *manifest.DB, opts EngineOptions, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TopK <= 0 {
		opts.TopK = 4
	}
	return &Engine{
		store:       store,
		provider:    provider,
		manifest:    mdb,
		embedder:    embedder,
		collection:  opts.Collection,
		topK:        opts.TopK,
		threshold:   opts.Threshold,
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		logger:      logger,
	}
}

// Retrieve embeds the question with the ingest-time embedder and returns the
// top-k most similar chunks. A mismatched embedder is rejected rather than
// silently degrading relevance.
func (e *Engine) Retrieve(ctx context.Context, question string) ([]vectordb.SearchResult, error) {
	if e.manifest != nil {
		if err := e.manifest.CheckEmbedder(e.collection, e.embedder.Name()); err != nil {
			return nil, err
		}
	}
	results, err := e.store.Search(ctx, question, e.topK, e.threshold)
	if err != nil {
		return nil, fmt.Errorf("retrieval: %w", err)
	}
	return results, nil
}

// Ask runs the full question pipeline: retrieve, then generate a grounded
// answer with citations. An empty retrieval yields the fixed fallback answer
// with zero citations and no model call.
func (e *Engine) Ask(ctx context.Context, question, history string) (*Answer, error) {
	retrievalStart := time.Now()
	results, err := e.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	retrievalMS := float64(time.Since(retrievalStart).Microseconds()) / 1000.0

	if len(results) == 0 {
		e.logger.Info("no chunks retrieved, returning fallback answer",
			zap.String("collection", e.collection))
		return &Answer{
			Text:        FallbackAnswer,
			Citations:   []Citation{},
			RetrievalMS: retrievalMS,
		}, nil
	}

	generationStart := time.Now()
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: buildSystemPrompt(history, results)},
			{Role: llm.RoleUser, Content: question},
		},
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generation: %w", err)
	}
	generationMS := float64(time.Since(generationStart).Microseconds()) / 1000.0

	// Citations come from the retrieval result only: the model can at most
	// reference what it was shown.
	citations := make([]Citation, len(results))
	for i, r := range results {
		citations[i] = Citation{
			Source:  r.Chunk.Metadata.Source,
			Locator: r.Chunk.Metadata.Locator(),
		}
	}

	e.logger.Info("answered question",
		zap.String("collection", e.collection),
		zap.Int("chunks", len(results)),
		zap.Float64("retrieval_ms", retrievalMS),
		zap.Float64("generation_ms", generationMS),
		zap.Int("output_tokens", resp.OutputTokens))

	return &Answer{
		Text:         resp.Content,
		Citations:    citations,
		RetrievalMS:  retrievalMS,
		GenerationMS: generationMS,
	}, nil
}
