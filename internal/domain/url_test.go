package domain_test

import (
	"testing"

	"marketcolor/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestInAllowList(t *testing.T) {
	allow := []string{"reuters.com", "bloomberg.com", "wsj.com"}

	assert.True(t, domain.InAllowList("https://www.reuters.com/markets/x", allow))
	assert.True(t, domain.InAllowList("https://uk.reuters.com/article", allow))
	assert.False(t, domain.InAllowList("https://notreuters.com/a", allow))
	assert.False(t, domain.InAllowList("https://reddit.com/r/wsb", allow))
	assert.False(t, domain.InAllowList("not a url", allow))
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t,
		domain.NormalizeURL("https://www.CNBC.com/2026/10/16/story.html?utm_source=x#top"),
		domain.NormalizeURL("http://cnbc.com/2026/10/16/story.html/"))
}

func TestNewStoryCandidate_BoundsSnippet(t *testing.T) {
	long := make([]rune, domain.MaxSnippetChars+50)
	for i := range long {
		long[i] = 'é'
	}
	c := domain.NewStoryCandidate("  Title ", " https://x.com ", string(long), "", domain.CategoryAlpha, "alpha_flow")

	assert.Equal(t, "Title", c.Title)
	assert.Equal(t, "https://x.com", c.URL)
	assert.Len(t, []rune(c.Snippet), domain.MaxSnippetChars)
	assert.Equal(t, domain.CategoryAlpha, c.Category)
}
