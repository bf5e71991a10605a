package scrape

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Metadata holds the structured descriptors of a scraped page.
type Metadata struct {
	Title  string `json:"title"`
	Domain string `json:"domain"`
	// Description is empty when the page has no meta description; the JSON
	// key is omitted in that case rather than serialized as "".
	Description string `json:"description,omitempty"`
}

// ExtractMetadata pulls title, domain and description from a parsed
// document. Domain is computed from the source URL alone, never from page
// content. It does not fail: every field degrades to a derivable fallback.
func ExtractMetadata(doc *goquery.Document, raw []byte, pageURL *url.URL) Metadata {
	return Metadata{
		Title:       resolveTitle(doc, raw, pageURL),
		Domain:      pageURL.Host,
		Description: metaDescription(doc),
	}
}

// resolveTitle is a best-effort title resolution: the readability parser's
// article title, then the document <title>, then the highest-level heading,
// and finally the URL itself. It never fails on a missing title.
func resolveTitle(doc *goquery.Document, raw []byte, pageURL *url.URL) string {
	parser := readability.NewParser()
	if article, err := parser.Parse(bytes.NewReader(raw), pageURL); err == nil {
		if t := strings.TrimSpace(article.Title); t != "" {
			return t
		}
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	for _, tag := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		if t := strings.TrimSpace(doc.Find(tag).First().Text()); t != "" {
			return t
		}
	}
	return pageURL.String()
}

// metaDescription reads the meta description, returning "" when the tag is
// missing or has empty content so that absence never looks like an empty
// descriptor downstream.
func metaDescription(doc *goquery.Document) string {
	content, ok := doc.Find(`meta[name="description"]`).First().Attr("content")
	if !ok {
		return ""
	}
	return strings.TrimSpace(content)
}
