// Package fetch performs single bounded page retrievals.
//
// A Fetcher does exactly one thing: retrieve one URL within a hard
// wall-clock timeout and a byte cap, and classify any failure into a
// closed set of error kinds (timeout, connection refused, HTTP status,
// too large, unsupported content type). It never retries; retry policy
// belongs to the crawler, which knows the session's budgets.
//
// A shared rate limiter (golang.org/x/time/rate) bounds the global
// request rate across all workers, independent of the per-domain pacing
// the frontier enforces.
package fetch
