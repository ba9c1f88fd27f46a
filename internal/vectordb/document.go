package vectordb

import "fmt"

// Chunk is a bounded text segment persisted in the vector store together
// with its embedding and citation metadata. Chunks are immutable after
// creation; a collection is only ever replaced wholesale by re-ingestion.
type Chunk struct {
	ID        string
	Text      string
	Embedding []float32 // computed at ingest time, in the same batch as Text
	Metadata  ChunkMetadata
}

// ChunkMetadata identifies where a chunk came from, for citations.
type ChunkMetadata struct {
	Source string // base filename
	Page   int    // 1-based PDF page, 0 when not applicable
	Index  int    // chunk index within the source document
	RunID  string // ingestion run that produced this chunk
}

// ChunkID builds the deterministic chunk identifier. Deterministic IDs make
// accidental double-ingestion overwrite rather than duplicate.
func ChunkID(source string, page, index int) string {
	return fmt.Sprintf("%s#p%d#c%d", source, page, index)
}

// Locator renders the human-readable citation locator: "page N" for PDF
// pages, "chunk N" otherwise.
func (m ChunkMetadata) Locator() string {
	if m.Page > 0 {
		return fmt.Sprintf("page %d", m.Page)
	}
	return fmt.Sprintf("chunk %d", m.Index)
}

// SearchResult pairs a chunk with its similarity score.
type SearchResult struct {
	Chunk      Chunk
	Similarity float32
}
