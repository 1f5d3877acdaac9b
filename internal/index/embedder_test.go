package index

import (
	"context"
	"errors"
	"math"
	"testing"
)

// TestLocalEmbedderDeterministic verifies identical text maps to an
// identical vector.
func TestLocalEmbedderDeterministic(t *testing.T) {
	t.Parallel()

	e := NewLocalEmbedder(0)
	ctx := context.Background()

	a, err := e.Embed(ctx, "concurrency control under external rate constraints")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	b, err := e.Embed(ctx, "concurrency control under external rate constraints")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	if len(a) != DefaultLocalDimensions {
		t.Errorf("dimensions = %d, want %d", len(a), DefaultLocalDimensions)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

// TestLocalEmbedderUnitNorm verifies vectors are L2-normalized, which
// keeps cosine scores in [-1, 1].
func TestLocalEmbedderUnitNorm(t *testing.T) {
	t.Parallel()

	e := NewLocalEmbedder(64)
	vec, err := e.Embed(context.Background(), "vectors should have unit length after normalization")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-5 {
		t.Errorf("norm = %f, want 1", math.Sqrt(norm))
	}
}

// TestLocalEmbedderSimilarity verifies overlapping vocabulary scores
// higher than disjoint vocabulary.
func TestLocalEmbedderSimilarity(t *testing.T) {
	t.Parallel()

	e := NewLocalEmbedder(0)
	ctx := context.Background()

	base, _ := e.Embed(ctx, "web crawler frontier scheduling politeness")
	similar, _ := e.Embed(ctx, "crawler frontier politeness delay scheduling")
	unrelated, _ := e.Embed(ctx, "banana smoothie recipe almond milk")

	simScore := CosineSimilarity(base, similar)
	unrelScore := CosineSimilarity(base, unrelated)
	if simScore <= unrelScore {
		t.Errorf("similar text scored %f, unrelated %f; want similar > unrelated", simScore, unrelScore)
	}
}

// TestLocalEmbedderEmptyText verifies the empty-content error.
func TestLocalEmbedderEmptyText(t *testing.T) {
	t.Parallel()

	e := NewLocalEmbedder(0)
	for _, text := range []string{"", "   ", "a ! ?"} {
		if _, err := e.Embed(context.Background(), text); !errors.Is(err, ErrEmptyText) {
			t.Errorf("Embed(%q) error = %v, want ErrEmptyText", text, err)
		}
	}
}

// TestCosineSimilarity tests the degenerate cases.
func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	if got := CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}); got != 0 {
		t.Errorf("mismatched lengths = %f, want 0", got)
	}
	if got := CosineSimilarity(nil, nil); got != 0 {
		t.Errorf("nil vectors = %f, want 0", got)
	}
	if got := CosineSimilarity([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Errorf("zero vector = %f, want 0", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors = %f, want 1", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{-1, 0}); math.Abs(got+1) > 1e-9 {
		t.Errorf("opposite vectors = %f, want -1", got)
	}
}
