// Package research ties the crawl pipeline into a session: one seed,
// one bounded crawl, one queryable knowledge base. It owns construction
// and teardown of the frontier, policy gate, fetcher, link graph, and
// vector index.
package research
