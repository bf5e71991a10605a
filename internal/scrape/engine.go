package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Stage names a sub-step of a single extraction, so failures can be
// attributed without guessing.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageParse   Stage = "parse"
	StageSelect  Stage = "select"
	StageConvert Stage = "convert"
)

// Error wraps a failure of one extraction sub-stage for one URL.
type Error struct {
	URL   string
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: stage %s: %v", e.URL, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Page is the result of extracting one URL: normalized markdown content plus
// structured metadata. Immutable once produced.
type Page struct {
	URL      string   `json:"url"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Fetcher is the minimal retrieval surface the engine needs; *fetch.Client
// satisfies it, and tests substitute fakes.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Engine composes fetch, parse, main-content selection, markdown conversion
// and metadata extraction into a single page transform.
type Engine struct {
	Fetcher Fetcher
}

// Extract retrieves url and turns it into a Page. Every failure is an
// *Error carrying the URL and the failing stage.
func (e *Engine) Extract(ctx context.Context, rawURL string) (Page, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Page{}, &Error{URL: rawURL, Stage: StageFetch, Err: err}
	}

	body, err := e.Fetcher.Get(ctx, rawURL)
	if err != nil {
		return Page{}, &Error{URL: rawURL, Stage: StageFetch, Err: err}
	}

	node, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return Page{}, &Error{URL: rawURL, Stage: StageParse, Err: err}
	}
	doc := goquery.NewDocumentFromNode(node)

	// Metadata reads the head before the selector prunes the tree.
	meta := ExtractMetadata(doc, body, parsedURL)

	content := MainContent(doc)
	fragment, err := goquery.OuterHtml(content)
	if err != nil {
		return Page{}, &Error{URL: rawURL, Stage: StageSelect, Err: err}
	}

	md, err := ToMarkdown(fragment)
	if err != nil {
		return Page{}, &Error{URL: rawURL, Stage: StageConvert, Err: err}
	}

	return Page{URL: rawURL, Content: md, Metadata: meta}, nil
}
