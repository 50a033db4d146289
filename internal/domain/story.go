package domain

import (
	"strings"
	"unicode/utf8"
)

// MaxSnippetChars bounds the body text carried by a candidate.
const MaxSnippetChars = 600

// SourceCategory tags where a candidate came from.
type SourceCategory string

const (
	CategoryMainstream   SourceCategory = "mainstream"
	CategorySocial       SourceCategory = "social"
	CategoryAlpha        SourceCategory = "alpha"
	CategoryProfessional SourceCategory = "professional"
)

// Valid reports whether c is one of the known source categories.
func (c SourceCategory) Valid() bool {
	switch c {
	case CategoryMainstream, CategorySocial, CategoryAlpha, CategoryProfessional:
		return true
	default:
		return false
	}
}

// StoryCandidate is one retrieved item, normalized from any provider.
// Values are treated as immutable after an adapter produced them.
type StoryCandidate struct {
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	Snippet     string         `json:"snippet"`
	PublishedAt string         `json:"published_at,omitempty"` // provider-supplied, zone not normalized
	Category    SourceCategory `json:"source_category"`
	SearchName  string         `json:"origin_search_name"`
}

// NewStoryCandidate trims the text fields and bounds the snippet length.
func NewStoryCandidate(title, url, snippet, publishedAt string, category SourceCategory, searchName string) StoryCandidate {
	return StoryCandidate{
		Title:       strings.TrimSpace(title),
		URL:         strings.TrimSpace(url),
		Snippet:     TruncateRunes(strings.TrimSpace(snippet), MaxSnippetChars),
		PublishedAt: strings.TrimSpace(publishedAt),
		Category:    category,
		SearchName:  searchName,
	}
}

// TruncateRunes cuts s to at most max runes, appending "..." when it had to cut.
func TruncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
