package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketcolor/internal/domain"
	"marketcolor/internal/usecase"
)

func curationPolicy() domain.CurationPolicy {
	return domain.CurationPolicy{
		StalenessHours:    36,
		MinDistinctTopics: 2,
		Topics:            []string{"macro", "central_banks", "earnings", "flow"},
		CategoryTargets: map[string]domain.CountRange{
			"mainstream": {Min: 1, Max: 3},
			"alpha":      {Min: 1, Max: 2},
		},
		DigDeeperCap: 2,
		FactCheckCap: 1,
		SnippetChars: 40,
	}
}

func newCurator(llm domain.LLMClient) *usecase.StoryCurator {
	fixed := time.Date(2026, 10, 16, 11, 0, 0, 0, time.UTC)
	return usecase.NewStoryCurator(llm, curationPolicy(), time.UTC, 4000, testLogger()).
		WithClock(func() time.Time { return fixed })
}

func TestStoryCurator_EmptySetStillAsks(t *testing.T) {
	llm := new(mockLLMClient)
	var req domain.ChatRequest
	llm.On("Chat", mock.Anything, withSystemPrompt(curatorPrompt)).
		Run(func(args mock.Arguments) { req = args.Get(1).(domain.ChatRequest) }).
		Return(&domain.LLMResponse{Text: `{"top_stories":[],"dig_deeper":[],"fact_check":[]}`, Done: true}, nil)

	got := newCurator(llm).Curate(context.Background(), domain.NewCandidateSet())

	assert.Equal(t, domain.EmptyCurationResult(), got)
	assert.Contains(t, userMessage(req), "No candidates were retrieved")
	llm.AssertNumberOfCalls(t, "Chat", 1)
}

func TestStoryCurator_FailuresYieldEmptyResult(t *testing.T) {
	tests := []struct {
		name     string
		response *domain.LLMResponse
		err      error
	}{
		{name: "service error", err: errors.New("timeout")},
		{name: "prose only", response: &domain.LLMResponse{Text: "Today was quiet.", Done: true}},
		{name: "truncated json", response: &domain.LLMResponse{Text: `{"top_stories":[{"title":"x"`, Done: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := new(mockLLMClient)
			llm.On("Chat", mock.Anything, mock.Anything).Return(tt.response, tt.err)

			set := domain.NewCandidateSet()
			set.Append("mainstream_markets", candidate("Stocks rally", "https://cnbc.com/1", domain.CategoryMainstream, "mainstream_markets"))
			got := newCurator(llm).Curate(context.Background(), set)

			assert.Equal(t, domain.EmptyCurationResult(), got)
		})
	}
}

func TestStoryCurator_EnforcesBackstop(t *testing.T) {
	raw := `Here you go:
{
  "top_stories": [
    {"title": "Fed holds rates", "summary": " Powell patient ", "source_url": "https://www.reuters.com/fed?utm=x", "impact": "HIGH", "category": "mainstream", "topic": "Central_Banks"},
    {"title": "Fed keeps rates unchanged", "summary": "dup by url", "source_url": "https://reuters.com/fed/", "impact": "high", "category": "mainstream"},
    {"title": "fed holds rates", "summary": "dup by title", "source_url": "https://cnbc.com/fed", "impact": "low", "category": "mainstream"},
    {"title": "   ", "summary": "untitled", "source_url": "https://x.com/1"},
    {"title": "Call sweep in XYZ", "summary": "flow", "source_url": "https://unusualwhales.com/x", "impact": "huge", "category": "edge", "topic": "flow"},
    {"title": "WSB piles into ABC", "summary": "retail", "source_url": "https://reddit.com/r/wsb/1", "impact": "low", "category": "sentiment", "topic": "social"}
  ],
  "dig_deeper": [
    {"topic": "fed", "query": "fed dots"},
    {"topic": "empty", "query": "  "},
    {"topic": "xyz", "query": "xyz options"},
    {"topic": "abc", "query": "abc short interest"}
  ],
  "fact_check": [
    {"claim": "ABC buyout", "source_domain": "Reddit.com", "query": "ABC buyout offer"},
    {"claim": "XYZ guidance", "source_domain": "x.com", "query": "XYZ guidance raise"}
  ]
}`
	llm := new(mockLLMClient)
	llm.On("Chat", mock.Anything, mock.Anything).Return(&domain.LLMResponse{Text: raw, Done: true}, nil)

	set := domain.NewCandidateSet()
	set.Append("mainstream_markets", candidate("Fed holds rates", "https://reuters.com/fed", domain.CategoryMainstream, "mainstream_markets"))
	got := newCurator(llm).Curate(context.Background(), set)

	require.Len(t, got.TopStories, 3)
	assert.Equal(t, domain.RankedStory{
		Title:     "Fed holds rates",
		Summary:   "Powell patient",
		SourceURL: "https://www.reuters.com/fed?utm=x",
		Impact:    domain.ImpactHigh,
		Category:  domain.StoryMainstream,
		Topic:     "central_banks",
	}, got.TopStories[0])
	assert.Equal(t, domain.StoryAlpha, got.TopStories[1].Category)
	assert.Equal(t, domain.ImpactMedium, got.TopStories[1].Impact)
	assert.Equal(t, domain.StorySocial, got.TopStories[2].Category)

	require.Len(t, got.DigDeeper, 2)
	assert.Equal(t, "fed dots", got.DigDeeper[0].Query)
	assert.Equal(t, "xyz options", got.DigDeeper[1].Query)

	require.Len(t, got.FactCheck, 1)
	assert.Equal(t, "reddit.com", got.FactCheck[0].SourceDomain)
}

func TestStoryCurator_PromptListsCandidatesByCategory(t *testing.T) {
	llm := new(mockLLMClient)
	var req domain.ChatRequest
	llm.On("Chat", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { req = args.Get(1).(domain.ChatRequest) }).
		Return(&domain.LLMResponse{Text: "{}", Done: true}, nil)

	set := domain.NewCandidateSet()
	set.Append("alpha_filings", domain.NewStoryCandidate("13D on ACME", "https://sec.gov/1",
		"A long snippet that goes well beyond forty characters in length", "2026-10-16T09:00:00Z",
		domain.CategoryAlpha, "alpha_filings"))
	set.Append("mainstream_markets", candidate("Stocks rally", "https://cnbc.com/1", domain.CategoryMainstream, "mainstream_markets"))
	newCurator(llm).Curate(context.Background(), set)

	user := userMessage(req)
	assert.Contains(t, user, "## MAINSTREAM (1)")
	assert.Contains(t, user, "## ALPHA (1)")
	assert.Less(t, strings.Index(user, "## MAINSTREAM"), strings.Index(user, "## ALPHA"))
	assert.Contains(t, user, "published: 2026-10-16T09:00:00Z")
	assert.Contains(t, user, "via: alpha_filings")
	assert.Contains(t, user, "Staleness window: 36 hours")
	assert.NotContains(t, user, "forty characters in length")

	system := req.Messages[0].Content
	assert.Contains(t, system, "more than 36 hours")
	assert.Contains(t, system, "at least 2 distinct topics")
	assert.Contains(t, system, "1-2 alpha, 1-3 mainstream")
	assert.Contains(t, system, "up to 2 stories")
	assert.Contains(t, system, "up to 1 claims")
}
