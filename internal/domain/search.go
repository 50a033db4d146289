package domain

import (
	"context"
	"fmt"
	"strings"
)

// Search depth hints understood by the search service.
const (
	DepthBasic    = "basic"
	DepthAdvanced = "advanced"
)

// Search topic hints understood by the search service.
const (
	TopicNews    = "news"
	TopicGeneral = "general"
)

// SearchSpec is a named request against the search service. Specs come from the
// static roster or from the query planner and are consumed once.
type SearchSpec struct {
	Name           string         `yaml:"name" json:"name"`
	Query          string         `yaml:"query" json:"query"`
	Category       SourceCategory `yaml:"category" json:"category"`
	Topic          string         `yaml:"topic,omitempty" json:"topic,omitempty"`
	Depth          string         `yaml:"depth,omitempty" json:"depth,omitempty"`
	MaxResults     int            `yaml:"max_results,omitempty" json:"max_results,omitempty"`
	IncludeDomains []string       `yaml:"include_domains,omitempty" json:"include_domains,omitempty"`
	ExcludeDomains []string       `yaml:"exclude_domains,omitempty" json:"exclude_domains,omitempty"`
	Days           int            `yaml:"days,omitempty" json:"days,omitempty"`
}

// CacheKey identifies specs that would produce the same provider request.
// The name is deliberately excluded.
func (s SearchSpec) CacheKey() string {
	return fmt.Sprintf("%s|%s|%s|%d|%d|%s|%s",
		strings.ToLower(strings.TrimSpace(s.Query)),
		s.Topic,
		s.Depth,
		s.MaxResults,
		s.Days,
		strings.Join(s.IncludeDomains, ","),
		strings.Join(s.ExcludeDomains, ","),
	)
}

// StorySearcher runs one SearchSpec. Implementations never return an error:
// transport and parse failures are logged and yield an empty slice.
type StorySearcher interface {
	Search(ctx context.Context, spec SearchSpec) []StoryCandidate
}

// StoryFeed is a non-query source (professional wire, RSS) pulled once per run.
// Like StorySearcher it degrades to an empty slice on failure.
type StoryFeed interface {
	Name() string
	Pull(ctx context.Context) []StoryCandidate
}
