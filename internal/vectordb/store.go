// Package vectordb persists chunk embeddings and serves nearest-neighbor
// retrieval. The actual similarity search is delegated to chromem-go.
package vectordb

import "context"

// Store defines the interface for storing and searching chunks by embedding
// similarity.
type Store interface {
	// Add inserts or overwrites chunks in the collection.
	Add(ctx context.Context, chunks []Chunk) error

	// Search embeds the query text and returns up to k chunks ordered by
	// non-increasing similarity, dropping results below threshold.
	// An empty collection yields an empty result and no error.
	Search(ctx context.Context, query string, k int, threshold float32) ([]SearchResult, error)

	// Reset drops and recreates the collection, discarding all chunks.
	Reset(ctx context.Context) error

	// Count returns the number of chunks in the collection.
	Count() int

	// Collections lists all collection names in the underlying database.
	Collections() []string

	// Drop removes a collection by name.
	Drop(name string) error
}
