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

const (
	dynamicMainstreamPrefix = "dynamic_mainstream_"
	dynamicAlphaPrefix      = "dynamic_alpha_"
	dynamicMaxResults       = 5
	dynamicDays             = 1
	plannerPurpose          = "planner"
)

// queryPlan is the planner's expected JSON shape.
type queryPlan struct {
	Mainstream []string `json:"mainstream"`
	Alpha      []string `json:"alpha"`
}

// QueryPlanner asks the reasoning service for time-aware search queries and
// falls back to the static query set whenever the answer is unusable.
type QueryPlanner struct {
	llm       domain.LLMClient
	policy    domain.PlannerPolicy
	location  *time.Location
	maxTokens int
	logger    *slog.Logger
}

func NewQueryPlanner(llm domain.LLMClient, policy domain.PlannerPolicy, location *time.Location, maxTokens int, logger *slog.Logger) *QueryPlanner {
	return &QueryPlanner{
		llm:       llm,
		policy:    policy,
		location:  location,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Plan returns the dynamic SearchSpecs for this run. It never fails.
func (p *QueryPlanner) Plan(ctx context.Context, now time.Time) []domain.SearchSpec {
	tc := NewTimeContext(now, p.location)
	plan, err := p.requestPlan(ctx, tc)
	if err != nil {
		p.logger.WarnContext(ctx, "query_plan_fallback", slog.String("reason", err.Error()))
		metrics.RecordStructuredFallback(plannerPurpose)
		plan = p.fallbackPlan()
	}
	specs := p.toSpecs(plan)
	p.logger.InfoContext(ctx, "query_plan_ready",
		slog.Int("mainstream", len(plan.Mainstream)),
		slog.Int("alpha", len(plan.Alpha)),
		slog.Bool("fallback", err != nil))
	return specs
}

func (p *QueryPlanner) requestPlan(ctx context.Context, tc TimeContext) (queryPlan, error) {
	if p.policy.MainstreamCount == 0 && p.policy.AlphaCount == 0 {
		return queryPlan{}, nil
	}
	resp, err := p.llm.Chat(ctx, domain.ChatRequest{
		Messages:   buildPlannerMessages(tc, p.policy),
		MaxTokens:  p.maxTokens,
		JSONOutput: true,
	})
	if err != nil {
		metrics.RecordLLMCall(plannerPurpose, "error")
		return queryPlan{}, fmt.Errorf("reasoning call failed: %w", err)
	}
	metrics.RecordLLMCall(plannerPurpose, "ok")

	raw, err := ExtractStructured[queryPlan](resp.Text, "mainstream", "alpha")
	if err != nil {
		return queryPlan{}, err
	}
	plan := queryPlan{
		Mainstream: cleanQueries(raw.Mainstream),
		Alpha:      cleanQueries(raw.Alpha),
	}
	if len(plan.Mainstream) < p.policy.MainstreamCount || len(plan.Alpha) < p.policy.AlphaCount {
		return queryPlan{}, fmt.Errorf("plan too short: %d mainstream, %d alpha", len(plan.Mainstream), len(plan.Alpha))
	}
	plan.Mainstream = plan.Mainstream[:p.policy.MainstreamCount]
	plan.Alpha = plan.Alpha[:p.policy.AlphaCount]
	return plan, nil
}

func (p *QueryPlanner) fallbackPlan() queryPlan {
	return queryPlan{
		Mainstream: firstN(p.policy.FallbackMainstream, p.policy.MainstreamCount),
		Alpha:      firstN(p.policy.FallbackAlpha, p.policy.AlphaCount),
	}
}

func (p *QueryPlanner) toSpecs(plan queryPlan) []domain.SearchSpec {
	specs := make([]domain.SearchSpec, 0, len(plan.Mainstream)+len(plan.Alpha))
	for i, q := range plan.Mainstream {
		specs = append(specs, domain.SearchSpec{
			Name:       fmt.Sprintf("%s%d", dynamicMainstreamPrefix, i+1),
			Query:      q,
			Category:   domain.CategoryMainstream,
			Topic:      domain.TopicNews,
			Depth:      domain.DepthBasic,
			MaxResults: dynamicMaxResults,
			Days:       dynamicDays,
		})
	}
	for i, q := range plan.Alpha {
		specs = append(specs, domain.SearchSpec{
			Name:       fmt.Sprintf("%s%d", dynamicAlphaPrefix, i+1),
			Query:      q,
			Category:   domain.CategoryAlpha,
			Topic:      domain.TopicNews,
			Depth:      domain.DepthAdvanced,
			MaxResults: dynamicMaxResults,
			Days:       dynamicDays,
		})
	}
	return specs
}

// cleanQueries trims, drops blanks and removes case-insensitive duplicates.
func cleanQueries(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, q := range in {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		key := strings.ToLower(q)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	return out
}

func firstN(in []string, n int) []string {
	if n > len(in) {
		n = len(in)
	}
	out := make([]string, n)
	copy(out, in[:n])
	return out
}

func buildPlannerMessages(tc TimeContext, policy domain.PlannerPolicy) []domain.Message {
	var sys strings.Builder
	sys.WriteString("You plan web news searches for a pre-market financial briefing.\n\n")
	sys.WriteString("### Task\n")
	sys.WriteString(fmt.Sprintf("Write exactly %d broad market queries (\"mainstream\") and exactly %d narrow edge queries (\"alpha\").\n",
		policy.MainstreamCount, policy.AlphaCount))
	sys.WriteString("Reason from the time context: day-of-week effects, earnings-season timing, central-bank calendars, ")
	sys.WriteString("scheduled data releases, and which regional markets are open right now.\n")
	sys.WriteString("Mainstream queries target market-moving news. Alpha queries target concrete events: unusual options trades, ")
	sys.WriteString("filings, insider buying, short-interest spikes. Never write how-to or screening queries.\n")
	sys.WriteString("Each query is a plain search string of at most 12 words.\n\n")
	sys.WriteString("### Response Format\n")
	sys.WriteString("Return only JSON:\n")
	sys.WriteString("{\"mainstream\": [\"query\", ...], \"alpha\": [\"query\", ...]}\n")

	return []domain.Message{
		{Role: "system", Content: sys.String()},
		{Role: "user", Content: tc.Describe()},
	}
}
