package index

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"
)

// ErrEmptyText is returned when there is nothing to embed after
// cleaning. The indexer treats it as a skip, not a failure.
var ErrEmptyText = errors.New("empty text")

// Embedder computes an embedding vector for a text. Implementations
// must be safe for concurrent use; the indexer calls Embed from
// multiple workers.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DefaultLocalDimensions is the vector size of the local embedder.
const DefaultLocalDimensions = 256

// LocalEmbedder is a deterministic, dependency-free embedder: a
// hashed bag-of-words with L2 normalization. It stands in for a real
// embedding model when no embedding service is configured, the same
// way the original research assistant shipped with a bundled default
// embedding function.
//
// The vectors are crude but honest: identical texts always map to
// identical vectors, overlapping vocabularies score higher than
// disjoint ones, and cosine scores stay in [-1, 1]. Good enough for
// offline use and reproducible tests; use an Ollama-backed embedder
// for real semantic quality.
type LocalEmbedder struct {
	dim int
}

// NewLocalEmbedder creates a local embedder. dim <= 0 selects
// DefaultLocalDimensions.
func NewLocalEmbedder(dim int) *LocalEmbedder {
	if dim <= 0 {
		dim = DefaultLocalDimensions
	}
	return &LocalEmbedder{dim: dim}
}

// Embed hashes each token into a bucket and L2-normalizes the result.
func (e *LocalEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, ErrEmptyText
	}

	vec := make([]float32, e.dim)
	for _, tok := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum32()
		bucket := int(sum % uint32(e.dim))
		// The next hash bit decides the sign, spreading tokens around
		// the sphere instead of piling into one orthant.
		if sum&(1<<31) != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, ErrEmptyText
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}

	return vec, nil
}

// tokenize lowercases and splits on non-alphanumeric runes, dropping
// single-rune tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r > 127)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// CosineSimilarity computes the cosine similarity of two vectors.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
