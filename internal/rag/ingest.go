package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kexuanli/askdocs/internal/embeddings"
	"github.com/kexuanli/askdocs/internal/loader"
	"github.com/kexuanli/askdocs/internal/manifest"
	"github.com/kexuanli/askdocs/internal/progress"
	"github.com/kexuanli/askdocs/internal/splitter"
	"github.com/kexuanli/askdocs/internal/vectordb"
)

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	RunID    string
	Files    int
	Chunks   int
	Duration time.Duration
}

// Pipeline turns a docs directory into a persisted, queryable collection.
type Pipeline struct {
	loader   *loader.Loader
	splitter *splitter.Splitter
	embedder embeddings.Embedder
	store    vectordb.Store
	manifest *manifest.DB

	collection   string
	chunkSize    int
	chunkOverlap int

	reporter progress.Reporter
	logger   *zap.Logger
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	Collection   string
	ChunkSize    int
	ChunkOverlap int
}

// NewPipeline creates an ingestion pipeline. reporter and logger may be nil.
func NewPipeline(ld *loader.Loader, embedder embeddings.Embedder, store vectordb.Store, mdb *manifest.DB, opts PipelineOptions, reporter progress.Reporter, logger *zap.Logger) *Pipeline {
	if reporter == nil {
		reporter = progress.NopReporter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		loader:       ld,
		splitter:     splitter.New(opts.ChunkSize, opts.ChunkOverlap),
		embedder:     embedder,
		store:        store,
		manifest:     mdb,
		collection:   opts.Collection,
		chunkSize:    opts.ChunkSize,
		chunkOverlap: opts.ChunkOverlap,
		reporter:     reporter,
		logger:       logger,
	}
}

// Ingest loads every supported file, splits it into chunks, embeds the chunks
// in batches and replaces the collection's contents. Re-running on the same
// documents yields the same collection: the collection is reset first and
// chunk IDs are deterministic.
func (p *Pipeline) Ingest(ctx context.Context) (*IngestResult, error) {
	started := time.Now()
	runID := uuid.NewString()

	docs, err := p.loader.Load()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		p.logger.Warn("no documents loaded; collection left unchanged")
		return &IngestResult{RunID: runID, Duration: time.Since(started)}, nil
	}

	// Replace any previous contents so re-ingestion is idempotent.
	if err := p.store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("resetting collection %q: %w", p.collection, err)
	}
	if p.manifest != nil {
		if err := p.manifest.ClearFiles(p.collection); err != nil {
			return nil, fmt.Errorf("clearing manifest: %w", err)
		}
	}

	// Group page-level units back into their source files so chunk indexes
	// and the per-file manifest records stay file-scoped.
	bySource := groupBySource(docs)

	p.reporter.Start(len(bySource))
	defer p.reporter.Finish()

	totalChunks := 0
	fileNum := 0
	for _, group := range bySource {
		fileNum++
		source := group[0].Source
		p.reporter.Update(fileNum, source)

		chunks := p.chunkFile(group, runID)
		if len(chunks) == 0 {
			continue
		}

		if err := p.embedAndStore(ctx, chunks); err != nil {
			// Embedding failures are backend-wide, not per-file: abort.
			return nil, fmt.Errorf("ingesting %s: %w", source, err)
		}

		if p.manifest != nil {
			if err := p.manifest.RecordFile(p.collection, source, hashDocuments(group), len(chunks)); err != nil {
				return nil, err
			}
		}

		totalChunks += len(chunks)
		p.logger.Info("ingested file", zap.String("source", source), zap.Int("chunks", len(chunks)))
	}

	if p.manifest != nil {
		if err := p.manifest.RecordCollection(manifest.CollectionInfo{
			Name:         p.collection,
			Embedder:     p.embedder.Name(),
			Dimensions:   p.embedder.Dimensions(),
			ChunkSize:    p.chunkSize,
			ChunkOverlap: p.chunkOverlap,
		}); err != nil {
			return nil, err
		}
		if err := p.manifest.RecordRun(manifest.Run{
			ID:         runID,
			Collection: p.collection,
			Files:      len(bySource),
			Chunks:     totalChunks,
			StartedAt:  started,
			FinishedAt: time.Now(),
		}); err != nil {
			return nil, err
		}
	}

	p.logger.Info("ingestion complete",
		zap.String("collection", p.collection),
		zap.Int("files", len(bySource)),
		zap.Int("chunks", totalChunks),
		zap.Duration("duration", time.Since(started)))

	return &IngestResult{
		RunID:    runID,
		Files:    len(bySource),
		Chunks:   totalChunks,
		Duration: time.Since(started),
	}, nil
}

// chunkFile splits every text unit of one source file, numbering chunks
// consecutively across the file's pages.
func (p *Pipeline) chunkFile(units []loader.Document, runID string) []vectordb.Chunk {
	var chunks []vectordb.Chunk
	index := 0
	for _, unit := range units {
		for _, text := range p.splitter.Split(unit.Text) {
			chunks = append(chunks, vectordb.Chunk{
				ID:   vectordb.ChunkID(unit.Source, unit.Page, index),
				Text: text,
				Metadata: vectordb.ChunkMetadata{
					Source: unit.Source,
					Page:   unit.Page,
					Index:  index,
					RunID:  runID,
				},
			})
			index++
		}
	}
	return chunks
}

// embedAndStore computes embeddings for a file's chunks in one batched call
// and writes the (vector, text, metadata) tuples to the store.
func (p *Pipeline) embedAndStore(ctx context.Context, chunks []vectordb.Chunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	return p.store.Add(ctx, chunks)
}

// groupBySource buckets loaded units by source filename, preserving load order.
func groupBySource(docs []loader.Document) [][]loader.Document {
	order := make(map[string]int)
	var groups [][]loader.Document
	for _, d := range docs {
		i, ok := order[d.Source]
		if !ok {
			i = len(groups)
			order[d.Source] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], d)
	}
	return groups
}

// hashDocuments digests the text of all units of one file for the manifest.
func hashDocuments(units []loader.Document) string {
	h := sha256.New()
	for _, u := range units {
		h.Write([]byte(u.Text))
	}
	return hex.EncodeToString(h.Sum(nil))
}
