package index

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/clearseek/clearseek/internal/model"
)

// Indexer owns the session's IndexState: the append-only list of
// chunks and their embedding vectors. It grows monotonically during a
// crawl and is discarded at session end unless snapshotted externally.
//
// Appends are atomic per document: a document's chunks become visible
// to readers all at once, so a concurrent query never observes half an
// indexed page. The vector count always equals the chunk count.
type Indexer struct {
	chunker  Chunker
	embedder Embedder
	logger   *slog.Logger

	mu     sync.RWMutex
	chunks []model.Chunk
	byDoc  map[string]int // document URL -> chunk count, guards re-indexing
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithChunker sets the chunking configuration.
func WithChunker(c Chunker) IndexerOption {
	return func(ix *Indexer) {
		ix.chunker = c
	}
}

// WithIndexLogger sets a custom logger.
func WithIndexLogger(logger *slog.Logger) IndexerOption {
	return func(ix *Indexer) {
		ix.logger = logger
	}
}

// NewIndexer creates an empty index using the given embedder.
func NewIndexer(embedder Embedder, opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		chunker:  NewChunker(0, 0),
		embedder: embedder,
		byDoc:    make(map[string]int),
	}

	for _, opt := range opts {
		opt(ix)
	}

	if ix.logger == nil {
		ix.logger = slog.Default()
	}

	return ix
}

// Index chunks and embeds a document's text and appends the result to
// the index. It is a no-op for documents whose status is not ok and
// for documents already indexed this session. Per-chunk embedding
// failures are logged and skipped; they never propagate to the crawl.
//
// It returns the number of chunks added.
func (ix *Indexer) Index(ctx context.Context, doc *model.Document) int {
	if doc == nil || !doc.Indexable() {
		return 0
	}

	ix.mu.RLock()
	_, done := ix.byDoc[doc.URL]
	ix.mu.RUnlock()
	if done {
		return 0
	}

	spans := ix.chunker.Split(doc.Text)
	if len(spans) == 0 {
		ix.logger.Debug("document has no indexable text", "url", doc.URL)
		return 0
	}

	domain := model.Domain(doc.URL)
	staged := make([]model.Chunk, 0, len(spans))
	for _, span := range spans {
		vec, err := ix.embedder.Embed(ctx, span.Text)
		if err != nil {
			if !errors.Is(err, ErrEmptyText) {
				ix.logger.Warn("embedding failed, skipping chunk",
					"url", doc.URL,
					"chunk", model.ChunkID(doc.URL, span.Start, span.End),
					"error", err,
				)
			}
			continue
		}

		staged = append(staged, model.Chunk{
			ID:          model.ChunkID(doc.URL, span.Start, span.End),
			DocumentURL: doc.URL,
			Start:       span.Start,
			End:         span.End,
			Text:        span.Text,
			Embedding:   vec,
			Domain:      domain,
			Depth:       doc.Depth,
			FetchedAt:   doc.FetchedAt,
		})
	}

	// One critical section per document: readers see all of the
	// document's chunks or none of them.
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, done := ix.byDoc[doc.URL]; done {
		return 0
	}
	ix.byDoc[doc.URL] = len(staged)
	ix.chunks = append(ix.chunks, staged...)
	return len(staged)
}

// Load appends pre-built chunks, e.g. from a snapshot database.
// Chunks without embeddings are dropped.
func (ix *Indexer) Load(chunks []model.Chunk) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	loaded := 0
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		ix.chunks = append(ix.chunks, c)
		ix.byDoc[c.DocumentURL]++
		loaded++
	}
	return loaded
}

// Count returns the number of indexed chunks, which by construction
// equals the number of stored vectors.
func (ix *Indexer) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// DocumentCount returns the number of distinct documents indexed.
func (ix *Indexer) DocumentCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byDoc)
}

// Chunks returns the current chunk list. Chunks are immutable and the
// list is append-only, so the returned slice is safe to read while the
// index keeps growing.
func (ix *Indexer) Chunks() []model.Chunk {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.chunks[:len(ix.chunks):len(ix.chunks)]
}

// Embedder exposes the index's embedder so queries embed with the same
// model the chunks were embedded with.
func (ix *Indexer) Embedder() Embedder {
	return ix.embedder
}

// Clear discards all indexed chunks. Used by the session teardown and
// the knowledge-base reset.
func (ix *Indexer) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.chunks = nil
	ix.byDoc = make(map[string]int)
}
