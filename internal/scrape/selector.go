package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentPattern matches identifiers and class tokens that conventionally
// mark the primary content region of a page.
var contentPattern = regexp.MustCompile(`(?i)content|main`)

// noiseTags are structural noise removed unconditionally before any
// candidate is evaluated.
const noiseTags = "script, style, nav, header, footer"

// MainContent isolates the primary readable region of a parsed document.
// Candidates are evaluated in fixed priority order, first match wins:
// a <main> landmark, an element whose id matches contentPattern, an element
// with a matching class token, then <article>. When nothing matches it falls
// back to <body>, and finally to the whole cleaned document. The heuristic
// is purely structural; it never inspects text length or density, so it is
// deterministic for a given document.
func MainContent(doc *goquery.Document) *goquery.Selection {
	doc.Find(noiseTags).Remove()

	candidates := []func() *goquery.Selection{
		func() *goquery.Selection { return firstOrNil(doc.Find("main")) },
		func() *goquery.Selection { return firstAttrMatch(doc, "id", matchesWhole) },
		func() *goquery.Selection { return firstAttrMatch(doc, "class", matchesToken) },
		func() *goquery.Selection { return firstOrNil(doc.Find("article")) },
	}
	for _, candidate := range candidates {
		if s := candidate(); s != nil {
			return s
		}
	}
	if body := firstOrNil(doc.Find("body")); body != nil {
		return body
	}
	return doc.Selection
}

func firstOrNil(s *goquery.Selection) *goquery.Selection {
	if s.Length() == 0 {
		return nil
	}
	return s.First()
}

// firstAttrMatch returns the first element (in document order) whose attr
// value satisfies match.
func firstAttrMatch(doc *goquery.Document, attr string, match func(string) bool) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("[" + attr + "]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		val, ok := s.Attr(attr)
		if ok && match(val) {
			found = s
			return false
		}
		return true
	})
	return found
}

func matchesWhole(val string) bool {
	return contentPattern.MatchString(val)
}

func matchesToken(val string) bool {
	for _, token := range strings.Fields(val) {
		if contentPattern.MatchString(token) {
			return true
		}
	}
	return false
}
