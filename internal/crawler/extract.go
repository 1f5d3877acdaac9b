package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// contentSelector matches the elements whose text is worth indexing.
// Navigation, scripts, and styling are deliberately absent.
const contentSelector = "p, h1, h2, h3, h4, h5, h6, li, td, th, blockquote, pre, figcaption"

// ExtractText pulls readable text from HTML, in document order. The
// result is NFC-normalized with whitespace collapsed, so identical
// content always produces identical text regardless of source markup
// quirks. Non-HTML input yields whatever text nodes survive the
// tolerant parse, typically the input itself for plain text.
func ExtractText(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	doc.Find("script, style, noscript").Remove()

	var parts []string
	doc.Find(contentSelector).Each(func(_ int, s *goquery.Selection) {
		// Skip containers whose text is fully covered by a matching
		// descendant, e.g. an <li> wrapping a <p>.
		if s.ChildrenFiltered(contentSelector).Length() > 0 {
			return
		}
		if text := collapseSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	// Pages without any content elements still deserve their body text.
	if len(parts) == 0 {
		if text := collapseSpace(doc.Find("body").Text()); text != "" {
			parts = append(parts, text)
		}
	}

	return norm.NFC.String(strings.Join(parts, "\n"))
}
