// Package report renders a research session's results as Markdown:
// the session summary, the most-linked pages, and retrieved passages
// with source attribution.
package report
