package index

import (
	"strings"
	"testing"
)

// TestSplitDeterministic verifies identical input and config produce
// identical boundaries across repeated runs.
func TestSplitDeterministic(t *testing.T) {
	t.Parallel()

	c := NewChunker(100, 20)
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 30)

	first := c.Split(text)
	for run := 0; run < 5; run++ {
		again := c.Split(text)
		if len(again) != len(first) {
			t.Fatalf("run %d: %d spans, want %d", run, len(again), len(first))
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("run %d span %d: %+v != %+v", run, i, again[i], first[i])
			}
		}
	}
}

// TestSplitBoundaries tests window size, stride, and overlap.
func TestSplitBoundaries(t *testing.T) {
	t.Parallel()

	c := Chunker{Size: 10, Overlap: 3}
	runes := []rune(strings.Repeat("abcdefghij", 3)) // 30 runes
	spans := c.Split(string(runes))

	for i, s := range spans {
		if s.End-s.Start > c.Size {
			t.Errorf("span %d length %d exceeds size %d", i, s.End-s.Start, c.Size)
		}
		if i > 0 {
			prev := spans[i-1]
			if s.Start != prev.Start+(c.Size-c.Overlap) {
				t.Errorf("span %d starts at %d, want stride %d from %d", i, s.Start, c.Size-c.Overlap, prev.Start)
			}
		}
	}

	last := spans[len(spans)-1]
	if last.End != len(runes) {
		t.Errorf("last span ends at %d, want %d (text fully covered)", last.End, len(runes))
	}
}

// TestSplitEdgeCases tests empty and short inputs.
func TestSplitEdgeCases(t *testing.T) {
	t.Parallel()

	c := NewChunker(100, 20)

	if spans := c.Split(""); spans != nil {
		t.Errorf("Split(\"\") = %v, want nil", spans)
	}

	spans := c.Split("short text")
	if len(spans) != 1 {
		t.Fatalf("short text produced %d spans, want 1", len(spans))
	}
	if spans[0].Start != 0 || spans[0].Text != "short text" {
		t.Errorf("short span = %+v", spans[0])
	}
}

// TestSplitMultibyte tests that offsets are rune-based, not byte-based.
func TestSplitMultibyte(t *testing.T) {
	t.Parallel()

	c := Chunker{Size: 4, Overlap: 1}
	text := "日本語のテキストです" // 10 runes, 30 bytes
	spans := c.Split(text)

	runes := []rune(text)
	for i, s := range spans {
		if string(runes[s.Start:s.End]) != s.Text {
			t.Errorf("span %d offsets do not address runes: %+v", i, s)
		}
	}
	if spans[len(spans)-1].End != len(runes) {
		t.Errorf("multibyte text not fully covered: %+v", spans)
	}
}
