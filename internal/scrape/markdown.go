package scrape

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// stripTags are removed during conversion even when structurally nested
// inside the chosen content node. The selector already drops most of these,
// but inline remnants inside the picked region must not leak into markdown.
var stripTags = []string{"script", "style", "noscript", "iframe"}

// multiBlankLines matches three or more newlines separated only by
// whitespace. Greedy \s* makes a whole run collapse in one replacement, which
// keeps Normalize idempotent; the trailing \n anchors the match at a line
// boundary so indentation of the next line survives.
var multiBlankLines = regexp.MustCompile(`\n\s*\n\s*\n`)

// ToMarkdown converts an HTML fragment to normalized markdown. Headings come
// out in ATX style and list items use "-" bullets (the commonmark plugin's
// defaults).
func ToMarkdown(fragment string) (string, error) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	for _, tag := range stripTags {
		conv.Register.TagType(tag, converter.TagTypeRemove, converter.PriorityStandard)
	}

	md, err := conv.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("html-to-markdown conversion: %w", err)
	}
	return Normalize(md), nil
}

// Normalize canonicalizes markdown whitespace. In order: runs of 3+ newlines
// collapse to exactly 2, trailing whitespace is stripped per line (leading
// whitespace stays, it can be significant for lists and code), and the
// document is trimmed with exactly one trailing newline appended.
// Normalize is idempotent.
func Normalize(md string) string {
	md = multiBlankLines.ReplaceAllString(md, "\n\n")

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	md = strings.Join(lines, "\n")

	return strings.TrimSpace(md) + "\n"
}
