// Package splitter cuts document text into overlapping chunks suitable for
// embedding. It recursively tries coarse separators (paragraph, line, word)
// before falling back to splitting between characters, so chunks break at
// natural boundaries whenever the text allows it.
package splitter

import "strings"

// defaultSeparators are tried in order, coarsest first.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter splits text into chunks of at most ChunkSize runes, with
// consecutive chunks sharing up to Overlap runes of trailing context.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// New creates a Splitter. chunkSize must be positive; overlap must be
// smaller than chunkSize (callers validate via config.Validate).
func New(chunkSize, overlap int) *Splitter {
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split divides text into chunks. Whitespace-only chunks are dropped;
// all non-whitespace content of the input is preserved across the output.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.splitText(text, s.separators)
}

func (s *Splitter) splitText(text string, separators []string) []string {
	// Pick the first separator present in the text.
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	splits := splitOn(text, separator)

	var chunks []string
	var pending []string
	for _, piece := range splits {
		if runeLen(piece) < s.chunkSize {
			pending = append(pending, piece)
			continue
		}
		// Flush accumulated small pieces before descending into the big one.
		if len(pending) > 0 {
			chunks = append(chunks, s.merge(pending, separator)...)
			pending = nil
		}
		if len(next) == 0 {
			chunks = appendChunk(chunks, piece)
		} else {
			chunks = append(chunks, s.splitText(piece, next)...)
		}
	}
	if len(pending) > 0 {
		chunks = append(chunks, s.merge(pending, separator)...)
	}
	return chunks
}

// merge joins consecutive pieces into chunks of at most chunkSize runes,
// carrying the last pieces over into the next chunk as overlap.
func (s *Splitter) merge(pieces []string, separator string) []string {
	sepLen := runeLen(separator)

	var chunks []string
	var current []string
	total := 0

	joinedLen := func(extra int) int {
		n := total + extra
		if len(current) > 0 {
			n += sepLen
		}
		return n
	}

	for _, piece := range pieces {
		l := runeLen(piece)
		if joinedLen(l) > s.chunkSize && len(current) > 0 {
			chunks = appendChunk(chunks, strings.Join(current, separator))

			// Drop leading pieces until what remains fits as overlap.
			for total > s.overlap || (joinedLen(l) > s.chunkSize && total > 0) {
				total -= runeLen(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, piece)
		total += l
	}
	if len(current) > 0 {
		chunks = appendChunk(chunks, strings.Join(current, separator))
	}
	return chunks
}

// splitOn splits text by separator. The empty separator splits between runes.
func splitOn(text, separator string) []string {
	if separator == "" {
		runes := []rune(text)
		out := make([]string, len(runes))
		for i, r := range runes {
			out[i] = string(r)
		}
		return out
	}
	var out []string
	for _, part := range strings.Split(text, separator) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func appendChunk(chunks []string, chunk string) []string {
	chunk = strings.TrimSpace(chunk)
	if chunk == "" {
		return chunks
	}
	return append(chunks, chunk)
}

func runeLen(s string) int {
	return len([]rune(s))
}
