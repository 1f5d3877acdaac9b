package retrieve

import (
	"context"
	"fmt"
	"sort"

	"github.com/clearseek/clearseek/internal/index"
	"github.com/clearseek/clearseek/internal/model"
)

// Granularity controls result deduplication.
type Granularity string

const (
	// GranularityDocument keeps only the best-scoring chunk per
	// document. The default: surfacing five chunks of the same page is
	// rarely what a researcher wants.
	GranularityDocument Granularity = "document"
	// GranularityDomain keeps only the best-scoring chunk per domain.
	GranularityDomain Granularity = "domain"
	// GranularityNone returns raw chunk ranking with no deduplication.
	GranularityNone Granularity = "none"
)

// Result is a ranked retrieval hit.
type Result struct {
	Chunk model.Chunk
	Score float64
}

// Retriever answers similarity queries against an index. The query is
// embedded with the same embedder the chunks were embedded with, so
// scores are comparable.
type Retriever struct {
	index       *index.Indexer
	granularity Granularity
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithGranularity sets the deduplication granularity.
func WithGranularity(g Granularity) Option {
	return func(r *Retriever) {
		r.granularity = g
	}
}

// NewRetriever creates a retriever over the given index.
func NewRetriever(ix *index.Indexer, opts ...Option) *Retriever {
	r := &Retriever{
		index:       ix,
		granularity: GranularityDocument,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Query embeds text and returns the top k chunks by cosine similarity,
// descending. Ties break by chunk insertion order, so repeated queries
// over an unchanged index return identical rankings. An empty index
// yields an empty result, not an error; a query embedding whose
// dimension differs from the indexed vectors is ErrEmbedderMismatch.
func (r *Retriever) Query(ctx context.Context, text string, k int) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}

	chunks := r.index.Chunks()
	if len(chunks) == 0 {
		return nil, nil
	}

	qvec, err := r.index.Embedder().Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qvec) != len(chunks[0].Embedding) {
		return nil, fmt.Errorf("%w: index vectors have %d dimensions, query embedding has %d",
			ErrEmbedderMismatch, len(chunks[0].Embedding), len(qvec))
	}

	scored := make([]Result, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, Result{
			Chunk: c,
			Score: index.CosineSimilarity(qvec, c.Embedding),
		})
	}

	// SliceStable preserves insertion order among equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	scored = r.dedup(scored)
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// dedup keeps the first (best) result per dedup key. The input is
// already sorted by score descending.
func (r *Retriever) dedup(results []Result) []Result {
	if r.granularity == GranularityNone {
		return results
	}

	seen := make(map[string]struct{}, len(results))
	kept := results[:0]
	for _, res := range results {
		key := res.Chunk.DocumentURL
		if r.granularity == GranularityDomain {
			key = res.Chunk.Domain
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, res)
	}
	return kept
}
