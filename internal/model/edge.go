package model

// LinkEdge is a directed page-to-page reference discovered during the
// crawl. Edges are append-only; the link graph deduplicates them by
// (source, target) pair unless the anchor text differs.
type LinkEdge struct {
	// Source is the normalized URL of the page containing the link.
	Source string `json:"source"`

	// Target is the normalized URL the link points to.
	Target string `json:"target"`

	// Anchor is the link's anchor text, trimmed. May be empty.
	Anchor string `json:"anchor,omitempty"`
}
