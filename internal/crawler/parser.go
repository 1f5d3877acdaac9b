package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/clearseek/clearseek/internal/model"
)

// Link is a hyperlink discovered on a page, with its anchor text.
type Link struct {
	// URL is the absolute link target.
	URL string

	// Anchor is the collapsed anchor text, empty for image links and
	// the like.
	Anchor string
}

// ParseResult contains everything extracted from an HTML page in a
// single pass.
//
// Design decision: We return a comprehensive result struct rather than
// multiple methods because:
//  1. Single parsing pass is more efficient
//  2. Related data can be collected together
//  3. Caller can choose what to use
type ParseResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// Links are the discovered hyperlinks in document order, with
	// relative URLs resolved against the page URL.
	Links []Link

	// Metadata holds description and keywords meta tags.
	Metadata model.PageMetadata

	// Resources lists referenced assets (images, scripts, stylesheets).
	Resources model.PageResources
}

// Parser extracts links, metadata, and resources from HTML content.
//
// Design decision: We use golang.org/x/net/html for structural parsing
// rather than regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like structure
//  3. More maintainable than complex regex patterns
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving
	// relative URLs.
	baseURL *url.URL
}

// NewParser creates a parser for a page at the given URL. The URL is
// used to resolve relative links.
func NewParser(pageURL string) (*Parser, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse walks the HTML tree and extracts all relevant information.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			p.processElement(n, result)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result, nil
}

// processElement handles a single HTML element node.
func (p *Parser) processElement(n *html.Node, result *ParseResult) {
	switch n.Data {
	case "title":
		if result.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			result.Title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "a":
		if href := getAttr(n, "href"); href != "" {
			resolved := p.resolveURL(href)
			if resolved != "" {
				result.Links = append(result.Links, Link{
					URL:    resolved,
					Anchor: collapseSpace(nodeText(n)),
				})
			}
		}

	case "img":
		if src := getAttr(n, "src"); src != "" {
			result.Resources.Images = append(result.Resources.Images, p.resolveURL(src))
		}

	case "script":
		if src := getAttr(n, "src"); src != "" {
			result.Resources.Scripts = append(result.Resources.Scripts, p.resolveURL(src))
		}

	case "link":
		if getAttr(n, "rel") == "stylesheet" {
			if href := getAttr(n, "href"); href != "" {
				result.Resources.Stylesheets = append(result.Resources.Stylesheets, p.resolveURL(href))
			}
		}

	case "meta":
		name := strings.ToLower(getAttr(n, "name"))
		if name == "" {
			name = strings.ToLower(getAttr(n, "property")) // OpenGraph uses property
		}
		content := getAttr(n, "content")
		if content == "" {
			return
		}
		switch name {
		case "description", "og:description":
			if result.Metadata.Description == "" {
				result.Metadata.Description = content
			}
		case "keywords":
			result.Metadata.Keywords = content
		}
	}
}

// resolveURL resolves a relative URL against the page URL. Pseudo
// schemes and bare fragments resolve to "".
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		strings.HasPrefix(href, "#") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.baseURL.ResolveReference(u).String()
}

// nodeText concatenates the text nodes under n.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// collapseSpace trims and squeezes runs of whitespace into one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
