package index

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/clearseek/clearseek/internal/model"
)

func testDocument(url, text string) *model.Document {
	return &model.Document{
		URL:       url,
		Depth:     1,
		FetchedAt: time.Now(),
		Text:      text,
		Status:    model.StatusOK,
	}
}

// TestIndexerIndex verifies the basic chunk-and-embed path and that
// the vector count matches the chunk count.
func TestIndexerIndex(t *testing.T) {
	t.Parallel()

	ix := NewIndexer(NewLocalEmbedder(64),
		WithChunker(Chunker{Size: 50, Overlap: 10}),
		WithIndexLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	text := strings.Repeat("frontier scheduling with politeness delays ", 10)
	added := ix.Index(context.Background(), testDocument("https://example.com/a", text))
	if added == 0 {
		t.Fatal("Index() added no chunks")
	}
	if ix.Count() != added {
		t.Errorf("Count() = %d, want %d", ix.Count(), added)
	}
	if ix.DocumentCount() != 1 {
		t.Errorf("DocumentCount() = %d, want 1", ix.DocumentCount())
	}

	for _, c := range ix.Chunks() {
		if len(c.Embedding) == 0 {
			t.Errorf("chunk %s has no embedding", c.ID)
		}
		if c.DocumentURL != "https://example.com/a" {
			t.Errorf("chunk %s has document URL %s", c.ID, c.DocumentURL)
		}
		if c.Domain != "example.com" {
			t.Errorf("chunk %s has domain %s", c.ID, c.Domain)
		}
	}
}

// TestIndexerSkipsNonOK verifies blocked, errored, and skipped
// documents never enter the index.
func TestIndexerSkipsNonOK(t *testing.T) {
	t.Parallel()

	ix := NewIndexer(NewLocalEmbedder(32))

	for _, status := range []model.DocumentStatus{model.StatusBlocked, model.StatusError, model.StatusSkipped} {
		doc := testDocument("https://example.com/"+string(status), "content that would otherwise index fine")
		doc.Status = status
		if added := ix.Index(context.Background(), doc); added != 0 {
			t.Errorf("status %s: Index() = %d, want 0", status, added)
		}
	}
	if ix.Count() != 0 {
		t.Errorf("Count() = %d, want 0", ix.Count())
	}

	if added := ix.Index(context.Background(), nil); added != 0 {
		t.Errorf("Index(nil) = %d, want 0", added)
	}
}

// TestIndexerNoReindex verifies a document is indexed at most once per
// session even when submitted concurrently.
func TestIndexerNoReindex(t *testing.T) {
	t.Parallel()

	ix := NewIndexer(NewLocalEmbedder(32),
		WithChunker(Chunker{Size: 40, Overlap: 5}),
	)
	text := strings.Repeat("repeatable deterministic indexing behavior ", 8)

	var wg sync.WaitGroup
	for _i := 0; _i < 8; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ix.Index(context.Background(), testDocument("https://example.com/dup", text))
		}()
	}
	wg.Wait()

	if ix.DocumentCount() != 1 {
		t.Errorf("DocumentCount() = %d, want 1", ix.DocumentCount())
	}
	want := len(NewChunker(40, 5).Split(text))
	if ix.Count() != want {
		t.Errorf("Count() = %d, want %d (one document's worth)", ix.Count(), want)
	}
}

// TestIndexerEmptyText verifies documents with no extractable text are
// a silent no-op.
func TestIndexerEmptyText(t *testing.T) {
	t.Parallel()

	ix := NewIndexer(NewLocalEmbedder(32))
	if added := ix.Index(context.Background(), testDocument("https://example.com/empty", "")); added != 0 {
		t.Errorf("Index() = %d, want 0", added)
	}
}

// TestIndexerLoad tests reloading chunks from a snapshot.
func TestIndexerLoad(t *testing.T) {
	t.Parallel()

	ix := NewIndexer(NewLocalEmbedder(32))
	loaded := ix.Load([]model.Chunk{
		{ID: "a#0-10", DocumentURL: "https://example.com/a", Embedding: []float32{1, 0}},
		{ID: "a#8-18", DocumentURL: "https://example.com/a", Embedding: []float32{0, 1}},
		{ID: "b#0-10", DocumentURL: "https://example.com/b"}, // no vector, dropped
	})
	if loaded != 2 {
		t.Errorf("Load() = %d, want 2", loaded)
	}
	if ix.Count() != 2 || ix.DocumentCount() != 1 {
		t.Errorf("Count() = %d, DocumentCount() = %d; want 2, 1", ix.Count(), ix.DocumentCount())
	}
}

// TestIndexerClear tests the knowledge-base reset path.
func TestIndexerClear(t *testing.T) {
	t.Parallel()

	ix := NewIndexer(NewLocalEmbedder(32))
	ix.Index(context.Background(), testDocument("https://example.com/a", "some indexable text for the knowledge base"))
	if ix.Count() == 0 {
		t.Fatal("setup: nothing indexed")
	}

	ix.Clear()
	if ix.Count() != 0 || ix.DocumentCount() != 0 {
		t.Errorf("after Clear: Count() = %d, DocumentCount() = %d; want 0, 0", ix.Count(), ix.DocumentCount())
	}

	// A cleared index accepts the same document again.
	if added := ix.Index(context.Background(), testDocument("https://example.com/a", "some indexable text for the knowledge base")); added == 0 {
		t.Error("Index() after Clear added no chunks")
	}
}
