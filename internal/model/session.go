package model

import "time"

// SessionState is the lifecycle state of a research session's crawl.
//
// Transitions: Idle -> Running -> {Completed, Aborted, Exhausted}.
// A session always ends in one of the three terminal states; individual
// page failures never abort the session.
type SessionState string

// Session states.
const (
	// StateIdle means the session has been created but not started.
	StateIdle SessionState = "idle"

	// StateRunning means the crawl loop is active.
	StateRunning SessionState = "running"

	// StateCompleted means the frontier drained with no pacing pending.
	StateCompleted SessionState = "completed"

	// StateAborted means the session was cancelled externally. Partial
	// results remain valid and queryable.
	StateAborted SessionState = "aborted"

	// StateExhausted means a budget ran out (time or page count) while
	// work remained in the frontier.
	StateExhausted SessionState = "exhausted"
)

// Terminal reports whether the state is one of the three end states.
func (s SessionState) Terminal() bool {
	return s == StateCompleted || s == StateAborted || s == StateExhausted
}

// Summary holds the final counters for a research session. It is the
// session result surface consumed by the report generator and the UI.
type Summary struct {
	// State is the terminal crawl state.
	State SessionState `json:"state"`

	// PagesFetched counts documents that ended with status ok.
	PagesFetched int `json:"pages_fetched"`

	// PagesBlocked counts documents denied by the policy gate.
	PagesBlocked int `json:"pages_blocked"`

	// PagesErrored counts documents that failed after retries or with
	// an HTTP error status.
	PagesErrored int `json:"pages_errored"`

	// PagesSkipped counts documents skipped for size or content type.
	PagesSkipped int `json:"pages_skipped"`

	// LinksDiscovered counts edges recorded in the link graph.
	LinksDiscovered int `json:"links_discovered"`

	// ChunksIndexed counts chunks in the vector index.
	ChunksIndexed int `json:"chunks_indexed"`

	// Duration is the wall-clock time the crawl ran.
	Duration time.Duration `json:"duration"`
}

// TotalPages returns the number of documents the crawl produced,
// regardless of status.
func (s Summary) TotalPages() int {
	return s.PagesFetched + s.PagesBlocked + s.PagesErrored + s.PagesSkipped
}
