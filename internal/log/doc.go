// Package log provides logging utilities built on log/slog.
//
// The crawler logs URLs, extracted text previews, and link lists, any
// of which can be pathologically long on real pages. CompactHandler
// wraps an slog.Handler and truncates oversized attribute values before
// they reach the underlying handler, keeping log lines readable without
// every call site having to truncate by hand.
package log
