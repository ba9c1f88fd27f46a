package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kexuanli/askdocs/internal/llm"
	"github.com/kexuanli/askdocs/internal/manifest"
	"github.com/kexuanli/askdocs/internal/vectordb"
)

type stubStore struct {
	results []vectordb.SearchResult
	err     error
	added   []vectordb.Chunk
	resets  int
	query   string
	k       int
}

func (s *stubStore) Add(_ context.Context, chunks []vectordb.Chunk) error {
	s.added = append(s.added, chunks...)
	return nil
}

func (s *stubStore) Search(_ context.Context, query string, k int, _ float32) ([]vectordb.SearchResult, error) {
	s.query = query
	s.k = k
	return s.results, s.err
}

func (s *stubStore) Reset(context.Context) error {
	s.resets++
	s.added = nil
	return nil
}

func (s *stubStore) Count() int            { return len(s.added) }
func (s *stubStore) Collections() []string { return nil }
func (s *stubStore) Drop(string) error     { return nil }

type stubProvider struct {
	content string
	err     error
	calls   int
	lastReq llm.CompletionRequest
}

func (p *stubProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.calls++
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Content: p.content, OutputTokens: 10}, nil
}

func (p *stubProvider) Name() string { return "stub" }

type stubEmbedder struct{ name string }

func (e *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}
func (e *stubEmbedder) Dimensions() int { return 3 }
func (e *stubEmbedder) Name() string    { return e.name }

func retrievedChunks() []vectordb.SearchResult {
	return []vectordb.SearchResult{
		{
			Chunk: vectordb.Chunk{
				ID:       "guide.md#p0#c0",
				Text:     "The museum opens at nine.",
				Metadata: vectordb.ChunkMetadata{Source: "guide.md", Index: 0},
			},
			Similarity: 0.9,
		},
		{
			Chunk: vectordb.Chunk{
				ID:       "hours.pdf#p2#c3",
				Text:     "Closing time is five in the afternoon.",
				Metadata: vectordb.ChunkMetadata{Source: "hours.pdf", Page: 2, Index: 3},
			},
			Similarity: 0.8,
		},
	}
}

func TestAskWithRetrieval(t *testing.T) {
	store := &stubStore{results: retrievedChunks()}
	provider := &stubProvider{content: "Opens at nine, closes at five."}
	engine := NewEngine(store, &stubEmbedder{name: "mock"}, provider, nil, EngineOptions{
		Collection: "kb", TopK: 2,
	}, nil)

	answer, err := engine.Ask(context.Background(), "When is the museum open?", "")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer.Text != "Opens at nine, closes at five." {
		t.Errorf("answer = %q", answer.Text)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times", provider.calls)
	}
	if store.query != "When is the museum open?" || store.k != 2 {
		t.Errorf("search got query %q, k %d", store.query, store.k)
	}

	// Citations mirror the retrieval set exactly.
	if len(answer.Citations) != 2 {
		t.Fatalf("got %d citations, want 2", len(answer.Citations))
	}
	if answer.Citations[0].Source != "guide.md" || answer.Citations[0].Locator != "chunk 0" {
		t.Errorf("citation 0 = %+v", answer.Citations[0])
	}
	if answer.Citations[1].Source != "hours.pdf" || answer.Citations[1].Locator != "page 2" {
		t.Errorf("citation 1 = %+v", answer.Citations[1])
	}
}

func TestAskPromptContainsContext(t *testing.T) {
	store := &stubStore{results: retrievedChunks()}
	provider := &stubProvider{content: "x"}
	engine := NewEngine(store, &stubEmbedder{name: "mock"}, provider, nil, EngineOptions{Collection: "kb"}, nil)

	if _, err := engine.Ask(context.Background(), "q", "User: earlier question\n"); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if len(provider.lastReq.Messages) != 2 {
		t.Fatalf("got %d messages, want system+user", len(provider.lastReq.Messages))
	}
	system := provider.lastReq.Messages[0].Content
	for _, want := range []string{
		"[guide.md | chunk 0]",
		"[hours.pdf | page 2]",
		"The museum opens at nine.",
		"earlier question",
	} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	if provider.lastReq.Messages[1].Content != "q" {
		t.Errorf("user message = %q", provider.lastReq.Messages[1].Content)
	}
}

func TestAskEmptyRetrievalFallsBack(t *testing.T) {
	store := &stubStore{} // no results
	provider := &stubProvider{content: "should never be used"}
	engine := NewEngine(store, &stubEmbedder{name: "mock"}, provider, nil, EngineOptions{Collection: "kb"}, nil)

	answer, err := engine.Ask(context.Background(), "anything at all", "")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer.Text != FallbackAnswer {
		t.Errorf("answer = %q, want fallback", answer.Text)
	}
	if len(answer.Citations) != 0 {
		t.Errorf("fallback carried %d citations", len(answer.Citations))
	}
	if provider.calls != 0 {
		t.Errorf("model was called %d times on empty retrieval", provider.calls)
	}
}

func TestAskGenerationError(t *testing.T) {
	store := &stubStore{results: retrievedChunks()}
	provider := &stubProvider{err: errors.New("model offline")}
	engine := NewEngine(store, &stubEmbedder{name: "mock"}, provider, nil, EngineOptions{Collection: "kb"}, nil)

	if _, err := engine.Ask(context.Background(), "q", ""); err == nil {
		t.Fatal("expected generation error")
	}
}

func TestAskEmbedderMismatchRejected(t *testing.T) {
	mdb, err := manifest.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer mdb.Close()
	if err := mdb.RecordCollection(manifest.CollectionInfo{
		Name: "kb", Embedder: "ollama/nomic-embed-text", Dimensions: 768,
		ChunkSize: 800, ChunkOverlap: 120,
	}); err != nil {
		t.Fatalf("RecordCollection: %v", err)
	}

	store := &stubStore{results: retrievedChunks()}
	provider := &stubProvider{content: "x"}
	engine := NewEngine(store, &stubEmbedder{name: "text-embedding-3-small"}, provider, mdb, EngineOptions{Collection: "kb"}, nil)

	_, err = engine.Ask(context.Background(), "q", "")
	if !errors.Is(err, manifest.ErrEmbedderMismatch) {
		t.Fatalf("err = %v, want ErrEmbedderMismatch", err)
	}
	if provider.calls != 0 {
		t.Error("model was called despite embedder mismatch")
	}
}
