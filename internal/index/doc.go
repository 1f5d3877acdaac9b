// Package index turns fetched documents into a searchable vector index.
//
// The pipeline is: deterministic overlapping chunking of the document's
// extracted text, one embedding per chunk, append into the in-memory
// IndexState. Chunking is deterministic by construction (same text and
// the same size/overlap configuration always produce the same chunk
// boundaries), which keeps retrieval reproducible across runs.
//
// Embeddings come from an Embedder implementation: an HTTP client for
// an Ollama-compatible service, or the built-in deterministic local
// embedder when no service is configured. Embedding failures skip the
// affected chunk and never fail the crawl.
package index
