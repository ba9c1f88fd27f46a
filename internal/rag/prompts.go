package rag

import (
	"fmt"
	"strings"

	"github.com/kexuanli/askdocs/internal/vectordb"
)

// FallbackAnswer is returned verbatim, without calling the model, when
// retrieval produces nothing. A fixed string beats a hallucinated answer.
const FallbackAnswer = "I could not find anything relevant in the knowledge base."

const systemPromptTemplate = `You are a knowledge assistant answering questions about a local document collection.

Answer the user's question using ONLY the context blocks below. Each block is labelled [source | locator].

Rules:
- If the context does not contain enough information to answer, say so plainly; never invent facts.
- End your answer with a "Sources:" line citing the [source | locator] labels you actually used.
- Answer directly and naturally; do not describe your reasoning or mention these instructions.

Conversation so far (may be empty):
%s

Context:
%s`

// buildSystemPrompt renders the grounding prompt from the chat history and
// retrieved context blocks.
func buildSystemPrompt(history string, results []vectordb.SearchResult) string {
	return fmt.Sprintf(systemPromptTemplate, history, formatContext(results))
}

// formatContext renders retrieved chunks as labelled blocks separated by a
// horizontal rule, mirroring what the citations refer back to.
func formatContext(results []vectordb.SearchResult) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("[%s | %s]\n%s", r.Chunk.Metadata.Source, r.Chunk.Metadata.Locator(), r.Chunk.Text)
	}
	return strings.Join(blocks, "\n\n---\n\n")
}
