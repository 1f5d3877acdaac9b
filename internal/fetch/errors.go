package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies a fetch failure. The set is closed: every failure the
// fetcher can produce maps to exactly one kind, and the crawler's retry
// policy dispatches on it.
type Kind int

// Fetch error kinds.
const (
	// KindTimeout means the request exceeded the wall-clock timeout.
	// Retryable.
	KindTimeout Kind = iota + 1

	// KindConnectionRefused means the transport failed before an HTTP
	// response arrived (refused, reset, DNS failure). Retryable.
	KindConnectionRefused

	// KindHTTPStatus means the server answered with an error status.
	// Not retryable.
	KindHTTPStatus

	// KindTooLarge means the body exceeded the configured byte cap.
	// The transfer is aborted, not buffered. Not retryable.
	KindTooLarge

	// KindUnsupportedContentType means the response is not a content
	// type the pipeline can extract text from. Not retryable.
	KindUnsupportedContentType
)

// String returns the kind's name for logging.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnectionRefused:
		return "connection_refused"
	case KindHTTPStatus:
		return "http_status"
	case KindTooLarge:
		return "too_large"
	case KindUnsupportedContentType:
		return "unsupported_content_type"
	default:
		return "unknown"
	}
}

// Retryable reports whether a failure of this kind is transient enough
// to be worth another attempt.
func (k Kind) Retryable() bool {
	return k == KindTimeout || k == KindConnectionRefused
}

// Error is a classified fetch failure.
type Error struct {
	// Kind is the failure classification.
	Kind Kind

	// URL is the URL whose fetch failed.
	URL string

	// StatusCode is set for KindHTTPStatus, 0 otherwise.
	StatusCode int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
		}
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the fetch error kind from an error chain.
// It returns 0 (no kind) when err is not a fetch error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
