// Package model defines the core data structures shared across the
// crawl, index, and retrieval layers.
//
// This package contains the following main types:
//   - Document: A fetched page with its extracted text, links, and status
//   - Chunk: A bounded span of document text plus its embedding vector
//   - LinkEdge: A directed page-to-page reference with anchor text
//   - Summary: Final counters and state for a research session
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, index, graph, report) need these
// types, so centralizing them prevents import cycles.
//
// The normalized URL string (see NormalizeURL) is the identity key used by
// every component: the frontier seen-set, the link graph nodes, and the
// chunk metadata all key on it.
package model
