package research

import "errors"

var (
	// ErrInvalidSeed means the seed URL could not be normalized into a
	// crawlable http(s) URL.
	ErrInvalidSeed = errors.New("invalid seed URL")

	// ErrAlreadyRun means Run was called twice on the same session.
	// Sessions are single-use; create a new one for a new crawl.
	ErrAlreadyRun = errors.New("session already run")

	// ErrEmbedServiceUnavailable means the configured embedding service
	// did not answer the pre-crawl health check.
	ErrEmbedServiceUnavailable = errors.New("embedding service unavailable")
)
