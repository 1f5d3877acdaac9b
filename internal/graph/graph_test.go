package graph

import (
	"fmt"
	"sync"
	"testing"

	"github.com/clearseek/clearseek/internal/model"
)

// TestAddEdgeDeduplication tests (source, target) dedup with the
// anchor-text exception.
func TestAddEdgeDeduplication(t *testing.T) {
	t.Parallel()

	g := New()
	edge := model.LinkEdge{Source: "https://a.test/", Target: "https://b.test/", Anchor: "docs"}

	g.AddEdge(edge)
	g.AddEdge(edge) // exact duplicate: dropped
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1 after duplicate", g.EdgeCount())
	}

	// Same pair, different anchor: kept as a distinct observation.
	g.AddEdge(model.LinkEdge{Source: "https://a.test/", Target: "https://b.test/", Anchor: "documentation"})
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount = %d, want 2 after anchor variant", g.EdgeCount())
	}

	// Degrees count deduplicated pairs, not anchor variants.
	if in, _ := g.Degree("https://b.test/"); in != 1 {
		t.Errorf("in-degree = %d, want 1", in)
	}
	if _, out := g.Degree("https://a.test/"); out != 1 {
		t.Errorf("out-degree = %d, want 1", out)
	}
}

// TestNeighbors tests adjacency queries.
func TestNeighbors(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge(model.LinkEdge{Source: "https://a.test/", Target: "https://b.test/"})
	g.AddEdge(model.LinkEdge{Source: "https://a.test/", Target: "https://c.test/"})
	g.AddEdge(model.LinkEdge{Source: "https://a.test/", Target: "https://b.test/"})

	got := g.Neighbors("https://a.test/")
	want := []string{"https://b.test/", "https://c.test/"}
	if len(got) != len(want) {
		t.Fatalf("Neighbors = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Neighbors[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if g.Neighbors("https://unknown.test/") != nil {
		t.Error("unknown URL must have nil neighbors")
	}
}

// TestTopHubs tests in-degree ranking with deterministic ties.
func TestTopHubs(t *testing.T) {
	t.Parallel()

	g := New()
	// hub.test gets 3 inbound links, mid.test 2, leaf.test 1.
	for i := 0; i < 3; i++ {
		g.AddEdge(model.LinkEdge{Source: fmt.Sprintf("https://s%d.test/", i), Target: "https://hub.test/"})
	}
	for i := 0; i < 2; i++ {
		g.AddEdge(model.LinkEdge{Source: fmt.Sprintf("https://s%d.test/", i), Target: "https://mid.test/"})
	}
	g.AddEdge(model.LinkEdge{Source: "https://s0.test/", Target: "https://leaf.test/"})

	hubs := g.TopHubs(2)
	if len(hubs) != 2 {
		t.Fatalf("TopHubs(2) returned %d hubs", len(hubs))
	}
	if hubs[0].URL != "https://hub.test/" || hubs[0].InDegree != 3 {
		t.Errorf("hubs[0] = %+v", hubs[0])
	}
	if hubs[1].URL != "https://mid.test/" || hubs[1].InDegree != 2 {
		t.Errorf("hubs[1] = %+v", hubs[1])
	}

	// k larger than the hub count returns everything with inbound links.
	if got := len(g.TopHubs(100)); got != 3 {
		t.Errorf("TopHubs(100) = %d hubs, want 3", got)
	}
}

// TestTakeSnapshot tests the read-only copy.
func TestTakeSnapshot(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddEdge(model.LinkEdge{Source: "https://a.test/", Target: "https://b.test/", Anchor: "b"})

	snap := g.TakeSnapshot()
	if len(snap.Nodes) != 2 || len(snap.Edges) != 1 {
		t.Fatalf("snapshot = %d nodes %d edges, want 2/1", len(snap.Nodes), len(snap.Edges))
	}

	// Mutating the snapshot must not affect the graph.
	snap.Edges[0].Anchor = "mutated"
	if g.TakeSnapshot().Edges[0].Anchor != "b" {
		t.Error("snapshot shares storage with the graph")
	}
}

// TestConcurrentAddEdge exercises the lock under parallel writers.
func TestConcurrentAddEdge(t *testing.T) {
	t.Parallel()

	g := New()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				g.AddEdge(model.LinkEdge{
					Source: fmt.Sprintf("https://w%d.test/%d", w, i),
					Target: "https://hub.test/",
				})
			}
		}()
	}
	wg.Wait()

	if in, _ := g.Degree("https://hub.test/"); in != 400 {
		t.Errorf("in-degree = %d, want 400", in)
	}
}
