package config

import "errors"

// Configuration validation errors returned by Config.Validate.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to
// use errors.Is() for programmatic error handling while still
// providing human-readable messages.
var (
	// ErrNoSeed is returned when no seed URL is configured.
	ErrNoSeed = errors.New("no seed URL specified")

	// ErrInvalidDepth is returned when the crawl depth is negative.
	ErrInvalidDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidTimeBudget is returned when the time budget is negative.
	// Use 0 for no time limit.
	ErrInvalidTimeBudget = errors.New("invalid time budget: must be non-negative")

	// ErrInvalidConcurrency is returned when the worker count is not
	// positive. Zero workers would mean no crawling at all.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidDelayFloor is returned when the per-domain delay floor
	// is negative. Use 0 for no minimum delay.
	ErrInvalidDelayFloor = errors.New("invalid delay floor: must be non-negative")

	// ErrInvalidMaxContentBytes is returned when the body cap is not positive.
	ErrInvalidMaxContentBytes = errors.New("invalid max content bytes: must be positive")

	// ErrInvalidChunking is returned when chunk size is not positive or
	// the overlap is negative or at least as large as the chunk size.
	ErrInvalidChunking = errors.New("invalid chunking: overlap must be smaller than chunk size")

	// ErrInvalidLinkLimit is returned when the per-page link limit is
	// negative. Use 0 for unlimited.
	ErrInvalidLinkLimit = errors.New("invalid link limit: must be non-negative")

	// ErrInvalidFetchTimeout is returned when the per-request timeout
	// is not positive.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidRetryMax is returned when the retry count is negative.
	ErrInvalidRetryMax = errors.New("invalid retry max: must be non-negative")

	// ErrInvalidMode is returned when the research mode is unknown.
	ErrInvalidMode = errors.New("invalid mode: must be exploratory, deep-dive, or stealth")
)
