package scrape

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestExtractMetadata_TitleAndDescription(t *testing.T) {
	html := `<html><head>
		<title>Page Title</title>
		<meta name="description" content="A short description.">
	</head><body><p>Body</p></body></html>`
	doc := parseDoc(t, html)

	meta := ExtractMetadata(doc, []byte(html), mustURL(t, "https://news.example.com/story"))
	if meta.Title != "Page Title" {
		t.Fatalf("unexpected title: %q", meta.Title)
	}
	if meta.Domain != "news.example.com" {
		t.Fatalf("unexpected domain: %q", meta.Domain)
	}
	if meta.Description != "A short description." {
		t.Fatalf("unexpected description: %q", meta.Description)
	}
}

func TestExtractMetadata_MissingDescriptionIsAbsent(t *testing.T) {
	html := `<html><head><title>T</title></head><body><p>Body</p></body></html>`
	doc := parseDoc(t, html)

	meta := ExtractMetadata(doc, []byte(html), mustURL(t, "https://example.com/"))
	if meta.Description != "" {
		t.Fatalf("expected absent description, got %q", meta.Description)
	}
	b, err := json.Marshal(meta)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "description") {
		t.Fatalf("absent description must be omitted from JSON, got %s", b)
	}
}

func TestExtractMetadata_EmptyDescriptionTreatedAsAbsent(t *testing.T) {
	html := `<html><head><title>T</title><meta name="description" content="  "></head><body></body></html>`
	doc := parseDoc(t, html)

	meta := ExtractMetadata(doc, []byte(html), mustURL(t, "https://example.com/"))
	if meta.Description != "" {
		t.Fatalf("whitespace-only description should be absent, got %q", meta.Description)
	}
}

func TestResolveTitle_FallsBackToHeadingThenURL(t *testing.T) {
	headingOnly := `<html><head></head><body><h1>Heading Title</h1><p>text</p></body></html>`
	doc := parseDoc(t, headingOnly)
	if got := resolveTitle(doc, []byte(headingOnly), mustURL(t, "https://example.com/a")); got != "Heading Title" {
		t.Fatalf("expected heading fallback, got %q", got)
	}

	bare := `<html><head></head><body><p></p></body></html>`
	doc = parseDoc(t, bare)
	if got := resolveTitle(doc, []byte(bare), mustURL(t, "https://example.com/a")); got != "https://example.com/a" {
		t.Fatalf("expected URL fallback, got %q", got)
	}
}

func TestExtractMetadata_DomainKeepsPort(t *testing.T) {
	html := `<html><head><title>T</title></head><body></body></html>`
	doc := parseDoc(t, html)

	meta := ExtractMetadata(doc, []byte(html), mustURL(t, "http://localhost:8080/page"))
	if meta.Domain != "localhost:8080" {
		t.Fatalf("expected host with port, got %q", meta.Domain)
	}
}
