package crawler

import (
	"strings"
	"testing"
)

const parserTestPage = `<!DOCTYPE html>
<html>
<head>
<title>  Test Page  </title>
<meta name="description" content="A page for parser tests">
<meta name="keywords" content="testing, parsing">
<link rel="stylesheet" href="/css/main.css">
<script src="/js/app.js"></script>
</head>
<body>
<a href="/docs/guide">User
	Guide</a>
<a href="https://other.example/page">External</a>
<a href="relative.html">Relative</a>
<a href="javascript:void(0)">JS</a>
<a href="mailto:someone@example.com">Mail</a>
<a href="tel:+123456">Call</a>
<a href="#section">Fragment</a>
<img src="/img/logo.png">
</body>
</html>`

// TestParserParse covers link resolution, anchor text, metadata, and
// resources in one pass over a representative page.
func TestParserParse(t *testing.T) {
	t.Parallel()

	p, err := NewParser("https://example.com/docs/index.html")
	if err != nil {
		t.Fatalf("NewParser() error: %v", err)
	}

	result, err := p.Parse(strings.NewReader(parserTestPage))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if result.Title != "Test Page" {
		t.Errorf("Title = %q, want %q", result.Title, "Test Page")
	}

	wantLinks := map[string]string{
		"https://example.com/docs/guide":         "User Guide",
		"https://other.example/page":             "External",
		"https://example.com/docs/relative.html": "Relative",
	}
	if len(result.Links) != len(wantLinks) {
		t.Fatalf("got %d links %v, want %d", len(result.Links), result.Links, len(wantLinks))
	}
	for _, link := range result.Links {
		anchor, ok := wantLinks[link.URL]
		if !ok {
			t.Errorf("unexpected link %q (pseudo schemes and fragments must be dropped)", link.URL)
			continue
		}
		if link.Anchor != anchor {
			t.Errorf("link %q anchor = %q, want %q", link.URL, link.Anchor, anchor)
		}
	}

	if result.Metadata.Description != "A page for parser tests" {
		t.Errorf("Description = %q", result.Metadata.Description)
	}
	if result.Metadata.Keywords != "testing, parsing" {
		t.Errorf("Keywords = %q", result.Metadata.Keywords)
	}

	if len(result.Resources.Images) != 1 || result.Resources.Images[0] != "https://example.com/img/logo.png" {
		t.Errorf("Images = %v", result.Resources.Images)
	}
	if len(result.Resources.Scripts) != 1 || result.Resources.Scripts[0] != "https://example.com/js/app.js" {
		t.Errorf("Scripts = %v", result.Resources.Scripts)
	}
	if len(result.Resources.Stylesheets) != 1 || result.Resources.Stylesheets[0] != "https://example.com/css/main.css" {
		t.Errorf("Stylesheets = %v", result.Resources.Stylesheets)
	}
}

// TestParserMalformedHTML verifies tolerant parsing of broken markup.
func TestParserMalformedHTML(t *testing.T) {
	t.Parallel()

	p, err := NewParser("https://example.com/")
	if err != nil {
		t.Fatalf("NewParser() error: %v", err)
	}

	result, err := p.Parse(strings.NewReader(`<html><body><a href="/ok">unclosed<p>tag soup`))
	if err != nil {
		t.Fatalf("Parse() on malformed HTML error: %v", err)
	}
	if len(result.Links) != 1 || result.Links[0].URL != "https://example.com/ok" {
		t.Errorf("Links = %v", result.Links)
	}
}

// TestParserOpenGraphDescription verifies og:description fills in when
// no plain description exists.
func TestParserOpenGraphDescription(t *testing.T) {
	t.Parallel()

	p, _ := NewParser("https://example.com/")
	result, err := p.Parse(strings.NewReader(
		`<html><head><meta property="og:description" content="From OpenGraph"></head></html>`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if result.Metadata.Description != "From OpenGraph" {
		t.Errorf("Description = %q", result.Metadata.Description)
	}
}
