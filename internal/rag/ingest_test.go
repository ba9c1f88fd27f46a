package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kexuanli/askdocs/internal/loader"
	"github.com/kexuanli/askdocs/internal/manifest"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile %s: %v", name, err)
	}
}

func newTestPipeline(t *testing.T, docsDir string, store *stubStore) (*Pipeline, *manifest.DB) {
	t.Helper()
	mdb, err := manifest.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { mdb.Close() })

	ld := loader.New(loader.Options{DocsDir: docsDir}, nil)
	p := NewPipeline(ld, &stubEmbedder{name: "mock"}, store, mdb, PipelineOptions{
		Collection:   "kb",
		ChunkSize:    50,
		ChunkOverlap: 10,
	}, nil, nil)
	return p, mdb
}

func TestIngest(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "guide.md", "# Guide\n\nThe museum opens at nine and closes at five every weekday.")
	writeDoc(t, dir, "notes.txt", "Tickets are twelve euros. Children under six enter for free.")

	store := &stubStore{}
	p, mdb := newTestPipeline(t, dir, store)

	result, err := p.Ingest(context.Background())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.Files != 2 {
		t.Errorf("Files = %d, want 2", result.Files)
	}
	if result.Chunks == 0 || result.Chunks != len(store.added) {
		t.Errorf("Chunks = %d, store holds %d", result.Chunks, len(store.added))
	}
	if store.resets != 1 {
		t.Errorf("store reset %d times, want 1", store.resets)
	}

	// Every stored chunk carries its embedding and citation metadata.
	for _, c := range store.added {
		if len(c.Embedding) == 0 {
			t.Errorf("chunk %s has no embedding", c.ID)
		}
		if c.Metadata.Source == "" || c.Metadata.RunID != result.RunID {
			t.Errorf("chunk %s metadata incomplete: %+v", c.ID, c.Metadata)
		}
	}

	// The manifest records how the collection was built.
	info, err := mdb.Collection("kb")
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}
	if info.Embedder != "mock" || info.ChunkSize != 50 || info.ChunkOverlap != 10 {
		t.Errorf("manifest collection = %+v", info)
	}
	files, err := mdb.Files("kb")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("manifest has %d files, want 2", len(files))
	}
	run, err := mdb.LastRun("kb")
	if err != nil {
		t.Fatalf("LastRun: %v", err)
	}
	if run.ID != result.RunID || run.Chunks != result.Chunks {
		t.Errorf("run record = %+v, result = %+v", run, result)
	}
}

func TestIngestDeterministicChunkIDs(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "doc.txt", "Sentence one about exhibits. Sentence two about opening hours. Sentence three about parking.")

	store := &stubStore{}
	p, _ := newTestPipeline(t, dir, store)

	if _, err := p.Ingest(context.Background()); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	firstIDs := make([]string, len(store.added))
	for i, c := range store.added {
		firstIDs[i] = c.ID
	}

	if _, err := p.Ingest(context.Background()); err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if store.resets != 2 {
		t.Errorf("store reset %d times, want 2", store.resets)
	}
	if len(store.added) != len(firstIDs) {
		t.Fatalf("second run stored %d chunks, first stored %d", len(store.added), len(firstIDs))
	}
	for i, c := range store.added {
		if c.ID != firstIDs[i] {
			t.Errorf("chunk %d ID changed between runs: %s vs %s", i, firstIDs[i], c.ID)
		}
	}
}

func TestIngestEmptyDirLeavesStoreAlone(t *testing.T) {
	dir := t.TempDir()
	store := &stubStore{}
	p, _ := newTestPipeline(t, dir, store)

	result, err := p.Ingest(context.Background())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.Files != 0 || result.Chunks != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
	if store.resets != 0 {
		t.Error("empty ingest reset the collection")
	}
}
