package model

import "time"

// DocumentStatus describes the outcome of fetching one URL.
type DocumentStatus string

// Document status values. A document ends in exactly one of these
// states; only StatusOK documents are eligible for indexing.
const (
	// StatusOK means the page was fetched and its content extracted.
	StatusOK DocumentStatus = "ok"

	// StatusBlocked means the policy gate denied the fetch (robots.txt).
	StatusBlocked DocumentStatus = "blocked"

	// StatusError means the fetch failed after retries, or the server
	// returned an error status code.
	StatusError DocumentStatus = "error"

	// StatusSkipped means the page was deliberately not ingested:
	// the body exceeded the byte cap or had an unsupported content type.
	StatusSkipped DocumentStatus = "skipped"
)

// Document represents one crawled URL and everything extracted from it.
// The crawler builds a Document and never mutates it afterwards; the
// indexer and link graph read it concurrently without locking.
type Document struct {
	// URL is the normalized URL of the page.
	URL string `json:"url"`

	// Depth is the link distance from the seed (seed is 0).
	Depth int `json:"depth"`

	// FetchedAt is when the fetch completed (or was refused).
	FetchedAt time.Time `json:"fetched_at"`

	// StatusCode is the HTTP status code, 0 if no response was received.
	StatusCode int `json:"status_code,omitempty"`

	// ContentType is the MIME type of the response without parameters.
	ContentType string `json:"content_type,omitempty"`

	// Title is the page title from the <title> tag.
	Title string `json:"title,omitempty"`

	// Text is the cleaned, extracted text content. This is what the
	// indexer chunks and embeds.
	Text string `json:"text,omitempty"`

	// Links are the normalized in-scope URLs discovered on the page,
	// in document order.
	Links []string `json:"links,omitempty"`

	// Metadata holds description and keywords from <meta> tags.
	Metadata PageMetadata `json:"metadata,omitempty"`

	// Resources lists referenced assets. Collected for reporting;
	// resources are never crawled.
	Resources PageResources `json:"resources,omitempty"`

	// Status is the fetch outcome.
	Status DocumentStatus `json:"status"`

	// Reason is a short human-readable explanation for non-ok statuses,
	// e.g. "denied by robots.txt" or "timeout after 3 attempts".
	Reason string `json:"reason,omitempty"`
}

// PageMetadata holds <meta> tag content extracted from an HTML page.
type PageMetadata struct {
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
}

// PageResources lists asset URLs referenced by a page.
type PageResources struct {
	Images      []string `json:"images,omitempty"`
	Scripts     []string `json:"scripts,omitempty"`
	Stylesheets []string `json:"stylesheets,omitempty"`
}

// Indexable reports whether the document may be handed to the indexer.
// Only documents that were actually fetched have content worth indexing.
func (d *Document) Indexable() bool {
	return d.Status == StatusOK
}
