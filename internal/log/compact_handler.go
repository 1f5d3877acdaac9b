package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"
)

// DefaultMaxValueLen is the attribute value length limit in runes.
// Long enough for any URL, short enough that a page body pasted into an
// attribute cannot flood the log.
const DefaultMaxValueLen = 256

// CompactHandler wraps an slog.Handler and truncates string attribute
// values that exceed a length limit, appending an ellipsis marker with
// the original length.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites stay free of truncation noise
type CompactHandler struct {
	handler     slog.Handler
	maxValueLen int
}

// NewCompactHandler creates a CompactHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used. maxValueLen <= 0
// selects DefaultMaxValueLen.
func NewCompactHandler(handler slog.Handler, maxValueLen int) *CompactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if maxValueLen <= 0 {
		maxValueLen = DefaultMaxValueLen
	}
	return &CompactHandler{handler: handler, maxValueLen: maxValueLen}
}

// Enabled delegates to the underlying handler.
func (h *CompactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle truncates the record's attributes and passes the record on.
func (h *CompactHandler) Handle(ctx context.Context, r slog.Record) error {
	compact := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		compact.AddAttrs(h.compactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, compact)
}

// WithAttrs returns a new CompactHandler whose underlying handler has
// the given (truncated) attributes.
func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	compacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		compacted[i] = h.compactAttr(a)
	}
	return &CompactHandler{handler: h.handler.WithAttrs(compacted), maxValueLen: h.maxValueLen}
}

// WithGroup returns a new CompactHandler with the given group name.
func (h *CompactHandler) WithGroup(name string) slog.Handler {
	return &CompactHandler{handler: h.handler.WithGroup(name), maxValueLen: h.maxValueLen}
}

// compactAttr truncates a single attribute. Group attributes are
// processed recursively so nested values stay bounded too.
func (h *CompactHandler) compactAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		a.Value = slog.StringValue(h.truncate(a.Value.String()))
	case slog.KindGroup:
		group := a.Value.Group()
		compacted := make([]slog.Attr, len(group))
		for i, ga := range group {
			compacted[i] = h.compactAttr(ga)
		}
		a.Value = slog.GroupValue(compacted...)
	default:
		// Non-string scalars are already bounded.
	}
	return a
}

// truncate shortens s to the rune limit, recording the original length.
func (h *CompactHandler) truncate(s string) string {
	if utf8.RuneCountInString(s) <= h.maxValueLen {
		return s
	}
	runes := []rune(s)
	return fmt.Sprintf("%s…(%d chars)", string(runes[:h.maxValueLen]), len(runes))
}

// NewLogger builds the application logger: a text handler on w at the
// given level, wrapped in a CompactHandler.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	base := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewCompactHandler(base, 0))
}
