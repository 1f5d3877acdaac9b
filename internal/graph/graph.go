package graph

import (
	"sort"
	"sync"

	"github.com/clearseek/clearseek/internal/model"
)

// Graph is the directed link graph keyed by normalized URL.
// All methods are safe for concurrent use.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*node
	edges []model.LinkEdge
}

type node struct {
	// out lists out-neighbor URLs in insertion order.
	out []string

	// anchors tracks which (target, anchor) pairs this node already
	// links with, for edge deduplication.
	anchors map[string]map[string]struct{}

	inDegree  int
	outDegree int
}

// Hub is a node ranked by in-degree, the unit TopHubs returns.
type Hub struct {
	URL      string `json:"url"`
	InDegree int    `json:"in_degree"`
}

// Snapshot is a read-only copy of the graph for external consumers.
type Snapshot struct {
	Nodes []string         `json:"nodes"`
	Edges []model.LinkEdge `json:"edges"`
}

// New creates an empty link graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddEdge records a directed edge. Duplicate (source, target) pairs are
// dropped unless the anchor text differs, in which case the edge is a
// distinct observation worth keeping. Degree counters reflect
// deduplicated edges only.
func (g *Graph) AddEdge(edge model.LinkEdge) {
	g.mu.Lock()
	defer g.mu.Unlock()

	src := g.node(edge.Source)
	dst := g.node(edge.Target)

	seen, known := src.anchors[edge.Target]
	if known {
		if _, dup := seen[edge.Anchor]; dup {
			return
		}
		seen[edge.Anchor] = struct{}{}
	} else {
		src.anchors[edge.Target] = map[string]struct{}{edge.Anchor: {}}
		src.out = append(src.out, edge.Target)
		// First edge between the pair: this is the one that counts
		// toward degrees.
		src.outDegree++
		dst.inDegree++
	}

	g.edges = append(g.edges, edge)
}

// Neighbors returns the URLs the given page links to, in the order
// they were first recorded. Unknown URLs return nil.
func (g *Graph) Neighbors(url string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[url]
	if !ok {
		return nil
	}
	out := make([]string, len(n.out))
	copy(out, n.out)
	return out
}

// Degree returns the in- and out-degree of a URL. Unknown URLs have
// degree zero.
func (g *Graph) Degree(url string) (in, out int) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, ok := g.nodes[url]
	if !ok {
		return 0, 0
	}
	return n.inDegree, n.outDegree
}

// TopHubs returns the k most linked-to pages by in-degree, descending.
// Ties are broken by URL so the ranking is deterministic. The counters
// are maintained on AddEdge, so this is a scan over nodes, not edges.
func (g *Graph) TopHubs(k int) []Hub {
	g.mu.RLock()
	defer g.mu.RUnlock()

	hubs := make([]Hub, 0, len(g.nodes))
	for url, n := range g.nodes {
		if n.inDegree > 0 {
			hubs = append(hubs, Hub{URL: url, InDegree: n.inDegree})
		}
	}

	sort.Slice(hubs, func(i, j int) bool {
		if hubs[i].InDegree != hubs[j].InDegree {
			return hubs[i].InDegree > hubs[j].InDegree
		}
		return hubs[i].URL < hubs[j].URL
	})

	if k > 0 && k < len(hubs) {
		hubs = hubs[:k]
	}
	return hubs
}

// NodeCount returns the number of distinct URLs in the graph.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of recorded edges, including anchor
// variants of the same pair.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// TakeSnapshot copies the graph for external, read-only consumption.
// Nodes are sorted for stable output.
func (g *Graph) TakeSnapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]string, 0, len(g.nodes))
	for url := range g.nodes {
		nodes = append(nodes, url)
	}
	sort.Strings(nodes)

	edges := make([]model.LinkEdge, len(g.edges))
	copy(edges, g.edges)

	return Snapshot{Nodes: nodes, Edges: edges}
}

// node returns the node for a URL, creating it if needed.
// Callers must hold the write lock.
func (g *Graph) node(url string) *node {
	n, ok := g.nodes[url]
	if !ok {
		n = &node{anchors: make(map[string]map[string]struct{})}
		g.nodes[url] = n
	}
	return n
}
