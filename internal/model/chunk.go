package model

import (
	"fmt"
	"time"
)

// Chunk is the unit of retrieval: a bounded span of a document's text
// plus its embedding vector. Chunks are immutable once created.
//
// Identity is (document URL, offset range): chunking is deterministic,
// so re-indexing the same document with the same configuration produces
// the same chunk IDs.
type Chunk struct {
	// ID is "<document-url>#<start>-<end>".
	ID string `json:"id"`

	// DocumentURL is the normalized URL of the source document.
	DocumentURL string `json:"document_url"`

	// Start and End are rune offsets into the document's extracted text.
	Start int `json:"start"`
	End   int `json:"end"`

	// Text is the chunk's text content.
	Text string `json:"text"`

	// Embedding is the vector computed for Text.
	Embedding []float32 `json:"embedding"`

	// Domain, Depth, and FetchedAt are copied from the source document
	// so retrieval results carry provenance without a document lookup.
	Domain    string    `json:"domain"`
	Depth     int       `json:"depth"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ChunkID builds the canonical chunk identifier for a document URL and
// rune offset range.
func ChunkID(documentURL string, start, end int) string {
	return fmt.Sprintf("%s#%d-%d", documentURL, start, end)
}
