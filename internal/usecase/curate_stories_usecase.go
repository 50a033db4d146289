package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marketcolor/internal/domain"
	"marketcolor/internal/infra/metrics"
)

const curatorPurpose = "curator"

// curationPayload is the tolerant wire shape of the curator answer. Common
// alternative field names are accepted alongside the documented ones.
type curationPayload struct {
	TopStories []storyPayload     `json:"top_stories"`
	DigDeeper  []digDeeperPayload `json:"dig_deeper"`
	FactCheck  []factCheckPayload `json:"fact_check"`
}

type storyPayload struct {
	Title          string `json:"title"`
	Summary        string `json:"summary"`
	OneLineSummary string `json:"one_line_summary"`
	SourceURL      string `json:"source_url"`
	URL            string `json:"url"`
	Impact         string `json:"impact"`
	Category       string `json:"category"`
	Topic          string `json:"topic"`
}

type digDeeperPayload struct {
	Topic         string `json:"topic"`
	Query         string `json:"query"`
	FollowUpQuery string `json:"follow_up_query"`
	Rationale     string `json:"rationale"`
}

type factCheckPayload struct {
	Claim             string `json:"claim"`
	SourceDomain      string `json:"source_domain"`
	Query             string `json:"query"`
	VerificationQuery string `json:"verification_query"`
}

// ParseCuration recovers the curator payload from raw text. Surrounding prose
// is ignored. When nothing can be recovered it returns the empty result
// together with the reason.
func ParseCuration(raw string) (domain.CurationResult, error) {
	payload, err := ExtractStructured[curationPayload](raw, "top_stories", "dig_deeper", "fact_check")
	if err != nil {
		return domain.EmptyCurationResult(), err
	}

	result := domain.EmptyCurationResult()
	for _, s := range payload.TopStories {
		result.TopStories = append(result.TopStories, domain.RankedStory{
			Title:     s.Title,
			Summary:   firstNonEmpty(s.Summary, s.OneLineSummary),
			SourceURL: firstNonEmpty(s.SourceURL, s.URL),
			Impact:    domain.Impact(s.Impact),
			Category:  domain.StoryCategory(s.Category),
			Topic:     s.Topic,
		})
	}
	for _, d := range payload.DigDeeper {
		result.DigDeeper = append(result.DigDeeper, domain.DigDeeperTarget{
			Topic:     d.Topic,
			Query:     firstNonEmpty(d.Query, d.FollowUpQuery),
			Rationale: d.Rationale,
		})
	}
	for _, f := range payload.FactCheck {
		result.FactCheck = append(result.FactCheck, domain.FactCheckTarget{
			Claim:        f.Claim,
			SourceDomain: f.SourceDomain,
			Query:        firstNonEmpty(f.Query, f.VerificationQuery),
		})
	}
	return result, nil
}

// StoryCurator ranks, categorizes and deduplicates all candidates in one
// batched reasoning call. The reasoning service is untrusted for structure, so
// its answer passes through tolerant parsing and a mechanical backstop.
type StoryCurator struct {
	llm       domain.LLMClient
	policy    domain.CurationPolicy
	location  *time.Location
	maxTokens int
	now       func() time.Time
	logger    *slog.Logger
}

func NewStoryCurator(llm domain.LLMClient, policy domain.CurationPolicy, location *time.Location, maxTokens int, logger *slog.Logger) *StoryCurator {
	return &StoryCurator{
		llm:       llm,
		policy:    policy,
		location:  location,
		maxTokens: maxTokens,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the clock used for the freshness context.
func (c *StoryCurator) WithClock(now func() time.Time) *StoryCurator {
	c.now = now
	return c
}

// Curate never fails. Any reasoning or parse failure yields the empty result.
// The call is made even for an empty candidate set.
func (c *StoryCurator) Curate(ctx context.Context, set *domain.CandidateSet) domain.CurationResult {
	start := time.Now()
	c.logger.InfoContext(ctx, "curation_started", slog.Int("candidates", set.Total()))

	resp, err := c.llm.Chat(ctx, domain.ChatRequest{
		Messages:   buildCuratorMessages(NewTimeContext(c.now(), c.location), set, c.policy),
		MaxTokens:  c.maxTokens,
		JSONOutput: true,
	})
	if err != nil {
		metrics.RecordLLMCall(curatorPurpose, "error")
		metrics.RecordStructuredFallback(curatorPurpose)
		c.logger.WarnContext(ctx, "curation_reasoning_failed", slog.String("error", err.Error()))
		return domain.EmptyCurationResult()
	}
	metrics.RecordLLMCall(curatorPurpose, "ok")

	parsed, err := ParseCuration(resp.Text)
	if err != nil {
		metrics.RecordStructuredFallback(curatorPurpose)
		c.logger.WarnContext(ctx, "curation_parse_failed",
			slog.String("error", err.Error()),
			slog.Int("response_chars", len(resp.Text)))
		return domain.EmptyCurationResult()
	}

	result := enforceCuration(parsed, c.policy)
	c.warnOnPolicyDrift(ctx, result)
	c.logger.InfoContext(ctx, "curation_completed",
		slog.Int("top_stories", len(result.TopStories)),
		slog.Int("dropped_stories", len(parsed.TopStories)-len(result.TopStories)),
		slog.Int("dig_deeper", len(result.DigDeeper)),
		slog.Int("fact_check", len(result.FactCheck)),
		slog.Int("distinct_topics", result.DistinctTopics()),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return result
}

// warnOnPolicyDrift logs quota rules the pipeline cannot enforce itself.
func (c *StoryCurator) warnOnPolicyDrift(ctx context.Context, result domain.CurationResult) {
	if len(result.TopStories) == 0 {
		return
	}
	if topics := result.DistinctTopics(); topics < c.policy.MinDistinctTopics {
		c.logger.WarnContext(ctx, "curation_low_diversity",
			slog.Int("distinct_topics", topics),
			slog.Int("required", c.policy.MinDistinctTopics))
	}
	counts := result.Categories()
	for name, target := range c.policy.CategoryTargets {
		n := counts[domain.StoryCategory(name)]
		if n < target.Min || n > target.Max {
			c.logger.WarnContext(ctx, "curation_category_off_target",
				slog.String("category", name),
				slog.Int("count", n),
				slog.String("target", fmt.Sprintf("%d-%d", target.Min, target.Max)))
		}
	}
}

// enforceCuration is the mechanical backstop: it drops untitled stories,
// closes the impact and category sets, collapses stories sharing a source URL
// or title, drops targets without a query and applies the target caps.
func enforceCuration(in domain.CurationResult, policy domain.CurationPolicy) domain.CurationResult {
	out := domain.EmptyCurationResult()

	seenURL := make(map[string]struct{})
	seenTitle := make(map[string]struct{})
	for _, s := range in.TopStories {
		s.Title = strings.TrimSpace(s.Title)
		if s.Title == "" {
			continue
		}
		s.Summary = strings.TrimSpace(s.Summary)
		s.SourceURL = strings.TrimSpace(s.SourceURL)
		s.Topic = strings.ToLower(strings.TrimSpace(s.Topic))
		s.Impact = normalizeImpact(s.Impact)
		s.Category = normalizeStoryCategory(s.Category)

		titleKey := strings.ToLower(s.Title)
		urlKey := domain.NormalizeURL(s.SourceURL)
		if _, dup := seenTitle[titleKey]; dup {
			continue
		}
		if urlKey != "" {
			if _, dup := seenURL[urlKey]; dup {
				continue
			}
			seenURL[urlKey] = struct{}{}
		}
		seenTitle[titleKey] = struct{}{}
		out.TopStories = append(out.TopStories, s)
	}

	for _, d := range in.DigDeeper {
		d.Query = strings.TrimSpace(d.Query)
		if d.Query == "" {
			continue
		}
		if len(out.DigDeeper) == policy.DigDeeperCap {
			break
		}
		d.Topic = strings.TrimSpace(d.Topic)
		out.DigDeeper = append(out.DigDeeper, d)
	}

	for _, f := range in.FactCheck {
		f.Query = strings.TrimSpace(f.Query)
		if f.Query == "" {
			continue
		}
		if len(out.FactCheck) == policy.FactCheckCap {
			break
		}
		f.Claim = strings.TrimSpace(f.Claim)
		f.SourceDomain = strings.ToLower(strings.TrimSpace(f.SourceDomain))
		out.FactCheck = append(out.FactCheck, f)
	}
	return out
}

func normalizeImpact(i domain.Impact) domain.Impact {
	switch domain.Impact(strings.ToLower(strings.TrimSpace(string(i)))) {
	case domain.ImpactHigh:
		return domain.ImpactHigh
	case domain.ImpactLow:
		return domain.ImpactLow
	default:
		return domain.ImpactMedium
	}
}

func normalizeStoryCategory(c domain.StoryCategory) domain.StoryCategory {
	switch strings.ToLower(strings.TrimSpace(string(c))) {
	case "alpha", "edge", "alpha/edge", "flow":
		return domain.StoryAlpha
	case "social", "sentiment":
		return domain.StorySocial
	default:
		return domain.StoryMainstream
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
