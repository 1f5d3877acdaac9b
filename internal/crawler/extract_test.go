package crawler

import (
	"strings"
	"testing"

	"golang.org/x/text/unicode/norm"
)

// TestExtractText verifies content elements are kept in document order
// and scripts, styles, and navigation chrome are dropped.
func TestExtractText(t *testing.T) {
	t.Parallel()

	page := `<html><head><style>body { color: red }</style></head><body>
<h1>Heading</h1>
<script>console.log("noise")</script>
<p>First   paragraph
with    messy whitespace.</p>
<ul><li>Item one</li><li>Item two</li></ul>
</body></html>`

	got := ExtractText(page)
	want := "Heading\nFirst paragraph with messy whitespace.\nItem one\nItem two"
	if got != want {
		t.Errorf("ExtractText() = %q, want %q", got, want)
	}
	if strings.Contains(got, "color: red") || strings.Contains(got, "console.log") {
		t.Errorf("ExtractText() leaked script/style content: %q", got)
	}
}

// TestExtractTextNestedContainers verifies a container wrapping a
// matching descendant is not emitted twice.
func TestExtractTextNestedContainers(t *testing.T) {
	t.Parallel()

	got := ExtractText(`<body><ul><li><p>only once</p></li></ul></body>`)
	if got != "only once" {
		t.Errorf("ExtractText() = %q, want %q", got, "only once")
	}
}

// TestExtractTextBodyFallback verifies pages without content elements
// still yield their body text.
func TestExtractTextBodyFallback(t *testing.T) {
	t.Parallel()

	got := ExtractText(`<body><div>just a div with text</div></body>`)
	if got != "just a div with text" {
		t.Errorf("ExtractText() = %q", got)
	}
}

// TestExtractTextNormalization verifies the output is NFC so identical
// content yields identical text regardless of source encoding form.
func TestExtractTextNormalization(t *testing.T) {
	t.Parallel()

	// "é" as 'e' + combining acute (NFD form).
	decomposed := "caf" + string([]rune{'e', 0x0301})
	got := ExtractText("<p>" + decomposed + "</p>")
	if got != norm.NFC.String(decomposed) {
		t.Errorf("ExtractText() = %q, want NFC form %q", got, norm.NFC.String(decomposed))
	}
	if got == decomposed {
		t.Error("ExtractText() left text in decomposed form")
	}
}

// TestExtractTextEmpty tests degenerate inputs.
func TestExtractTextEmpty(t *testing.T) {
	t.Parallel()

	if got := ExtractText(""); got != "" {
		t.Errorf("ExtractText(\"\") = %q", got)
	}
	if got := ExtractText("<html><body></body></html>"); got != "" {
		t.Errorf("ExtractText(empty body) = %q", got)
	}
}
