// Package graph maintains the directed link graph discovered during a
// crawl.
//
// The graph is append-only from the crawler's perspective and keeps
// in/out-degree counters up to date on every AddEdge, so reporting
// queries like "most linked-to pages" never rescan the edge set.
// Snapshot hands a read-only copy of nodes and edges to the
// visualization collaborator.
package graph
