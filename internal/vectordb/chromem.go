package vectordb

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/kexuanli/askdocs/internal/embeddings"
)

// ChromemStore implements Store using a chromem-go database persisted under
// a directory, with one named collection per knowledge base.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemStore opens (or creates) a persistent chromem database at dir
// and binds the named collection to the given embedder. An empty dir opens
// an in-memory database, which is used by tests.
func NewChromemStore(dir, collection string, embedder embeddings.Embedder) (*ChromemStore, error) {
	var (
		db  *chromem.DB
		err error
	)
	if dir == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dir, true)
		if err != nil {
			return nil, fmt.Errorf("open vector store at %s: %w", dir, err)
		}
	}

	ef := embeddings.ToChromemFunc(embedder)
	col, err := db.GetOrCreateCollection(collection, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection %q: %w", collection, err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		name:       collection,
		embedFunc:  ef,
	}, nil
}

func (s *ChromemStore) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:        c.ID,
			Content:   c.Text,
			Embedding: c.Embedding, // chromem only calls the embedding func when this is empty
			Metadata:  metadataToMap(c.Metadata),
		}
	}

	return s.collection.AddDocuments(ctx, docs, 1)
}

func (s *ChromemStore) Search(ctx context.Context, query string, k int, threshold float32) ([]SearchResult, error) {
	if k <= 0 {
		k = 4
	}

	// chromem-go requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := s.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	searchResults := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if r.Similarity < threshold {
			continue
		}
		searchResults = append(searchResults, SearchResult{
			Chunk: Chunk{
				ID:       r.ID,
				Text:     r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		})
	}

	// chromem returns results ordered by similarity already; keep the
	// guarantee explicit.
	sort.SliceStable(searchResults, func(i, j int) bool {
		return searchResults[i].Similarity > searchResults[j].Similarity
	})

	return searchResults, nil
}

func (s *ChromemStore) Reset(ctx context.Context) error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("delete collection %q: %w", s.name, err)
	}
	col, err := s.db.GetOrCreateCollection(s.name, nil, s.embedFunc)
	if err != nil {
		return fmt.Errorf("recreate collection %q: %w", s.name, err)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

func (s *ChromemStore) Collections() []string {
	var names []string
	for name := range s.db.ListCollections() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *ChromemStore) Drop(name string) error {
	return s.db.DeleteCollection(name)
}

// metadataToMap converts ChunkMetadata to a flat map[string]string for chromem.
func metadataToMap(m ChunkMetadata) map[string]string {
	return map[string]string{
		"source": m.Source,
		"page":   strconv.Itoa(m.Page),
		"index":  strconv.Itoa(m.Index),
		"run_id": m.RunID,
	}
}

// mapToMetadata converts a flat map[string]string back to ChunkMetadata.
func mapToMetadata(m map[string]string) ChunkMetadata {
	page, _ := strconv.Atoi(m["page"])
	index, _ := strconv.Atoi(m["index"])
	return ChunkMetadata{
		Source: m["source"],
		Page:   page,
		Index:  index,
		RunID:  m["run_id"],
	}
}
