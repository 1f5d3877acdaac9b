package retrieve

import "errors"

// ErrEmbedderMismatch is returned when the query embedding's dimension
// differs from the indexed vectors'. This happens when a snapshot built
// with one embedder (e.g. an Ollama model) is queried with another
// (e.g. the built-in default): the cosine scores would all degenerate
// to zero, so the mismatch is an error rather than a silent bad answer.
var ErrEmbedderMismatch = errors.New("query embedder does not match indexed vectors")
