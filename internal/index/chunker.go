package index

import "github.com/clearseek/clearseek/internal/config"

// Span is one chunk boundary produced by the chunker: a rune offset
// range into the source text plus the text itself.
type Span struct {
	Start int
	End   int
	Text  string
}

// Chunker splits text into overlapping windows of runes.
//
// Rune-based windows keep multi-byte text intact; byte windows would
// split UTF-8 sequences. The stride is Size-Overlap, so consecutive
// chunks share Overlap runes and sentences straddling a boundary stay
// retrievable from at least one chunk.
type Chunker struct {
	// Size is the window length in runes.
	Size int

	// Overlap is the number of runes shared by adjacent windows.
	// Must be smaller than Size.
	Overlap int
}

// NewChunker creates a chunker, substituting defaults for
// non-positive size or negative overlap.
func NewChunker(size, overlap int) Chunker {
	if size <= 0 {
		size = config.DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = config.DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 4
		}
	}
	return Chunker{Size: size, Overlap: overlap}
}

// Split produces the chunk spans for a text. The split is a pure
// function of (text, Size, Overlap): no randomness, no state.
// Empty input yields no spans; whitespace-only input yields spans
// whose text the embedder later rejects.
func (c Chunker) Split(text string) []Span {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	if len(runes) <= c.Size {
		return []Span{{Start: 0, End: len(runes), Text: string(runes)}}
	}

	stride := c.Size - c.Overlap
	spans := make([]Span, 0, (len(runes)+stride-1)/stride)

	for start := 0; start < len(runes); start += stride {
		end := start + c.Size
		if end > len(runes) {
			end = len(runes)
		}
		spans = append(spans, Span{Start: start, End: end, Text: string(runes[start:end])})
		if end == len(runes) {
			break
		}
	}

	return spans
}
