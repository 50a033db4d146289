// Package htmltext turns HTML-bearing provider fields into plain text.
package htmltext

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()

	// Block-level closers would otherwise glue adjacent paragraphs together.
	blockBreak = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/h[1-6]|/tr)\b[^>]*>`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// Strip removes markup, decodes entities and collapses whitespace.
func Strip(raw string) string {
	if raw == "" {
		return ""
	}
	text := blockBreak.ReplaceAllString(raw, "$0 ")
	text = strict.Sanitize(text)
	text = html.UnescapeString(text)
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
