// Package crawler implements the bounded crawl loop: it pops URLs from
// the frontier, consults the policy gate, fetches pages, extracts text
// and links, feeds the link graph and the vector index, and enforces
// the session's depth, page, and time budgets.
package crawler
