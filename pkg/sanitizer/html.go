// Package sanitizer derives the text/plain alternative of HTML email bodies.
package sanitizer

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// strict removes every tag; script and style bodies go with them.
	strict = bluemonday.StrictPolicy()

	blockEnds   = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h[1-6]|li|tr|table|ul|ol|blockquote|pre|section|article|header|footer)\s*>`)
	listItems   = regexp.MustCompile(`(?i)<li(\s[^>]*)?>`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
	innerSpaces = regexp.MustCompile(`[ \t]+`)
)

// PlainText converts an HTML email body into readable text.
// Block boundaries become line breaks, list items get a "- " prefix,
// entities are decoded and runs of blank lines collapse to one.
func PlainText(s string) string {
	s = listItems.ReplaceAllString(s, "- ")
	s = blockEnds.ReplaceAllString(s, "\n")
	s = html.UnescapeString(strict.Sanitize(s))

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(innerSpaces.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}
