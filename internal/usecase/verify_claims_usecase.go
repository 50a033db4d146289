package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"marketcolor/internal/domain"
	"marketcolor/internal/infra/metrics"
)

const (
	defaultDeepDiveDays   = 2
	defaultFollowUpResult = 5
)

// ClaimVerifier runs the second, smaller search round: one follow-up search
// per dig-deeper target and one allow-listed search per fact-check target.
//
// A fact check counts as verified when at least one result comes from an
// allow-listed domain. This measures coverage by a credible outlet; the claim
// text is never compared against what the outlet wrote.
type ClaimVerifier struct {
	searcher    domain.StorySearcher
	policy      domain.VerificationPolicy
	concurrency int
	logger      *slog.Logger
}

func NewClaimVerifier(searcher domain.StorySearcher, policy domain.VerificationPolicy, concurrency int, logger *slog.Logger) *ClaimVerifier {
	if concurrency <= 0 {
		concurrency = defaultSearchConcurrency
	}
	return &ClaimVerifier{
		searcher:    searcher,
		policy:      policy,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Verify never fails. Targets are processed independently; a failing search
// leaves an empty result for its key.
func (v *ClaimVerifier) Verify(ctx context.Context, curation domain.CurationResult) domain.VerificationReport {
	start := time.Now()
	report := domain.VerificationReport{
		Findings:   make(map[string][]domain.StoryCandidate),
		DeepDives:  make([]domain.DeepDiveResult, len(curation.DigDeeper)),
		FactChecks: make([]domain.VerificationResult, len(curation.FactCheck)),
	}
	var mu sync.Mutex
	record := func(key string, items []domain.StoryCandidate) {
		mu.Lock()
		report.Findings[key] = items
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(v.concurrency)
	for i, target := range curation.DigDeeper {
		g.Go(func() error {
			key := domain.DeepKey(i)
			findings := v.searcher.Search(ctx, v.deepDiveSpec(key, target))
			record(key, findings)
			report.DeepDives[i] = domain.DeepDiveResult{Target: target, Findings: findings}
			return nil
		})
	}
	for i, target := range curation.FactCheck {
		g.Go(func() error {
			key := domain.VerifyKey(i)
			results := v.searcher.Search(ctx, v.factCheckSpec(key, target))
			record(key, results)
			report.FactChecks[i] = v.judge(target, results)
			return nil
		})
	}
	_ = g.Wait()

	for _, fc := range report.FactChecks {
		metrics.RecordFactCheck(fc.Verified)
	}
	v.logger.InfoContext(ctx, "verification_completed",
		slog.Int("deep_dives", len(report.DeepDives)),
		slog.Int("fact_checks", len(report.FactChecks)),
		slog.Int("verified", report.VerifiedCount()),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return report
}

// judge keeps only allow-listed results as support.
func (v *ClaimVerifier) judge(target domain.FactCheckTarget, results []domain.StoryCandidate) domain.VerificationResult {
	supporting := make([]domain.StoryCandidate, 0, len(results))
	for _, r := range results {
		if domain.InAllowList(r.URL, v.policy.CredibleDomains) {
			supporting = append(supporting, r)
		}
	}
	return domain.VerificationResult{
		Target:     target,
		Verified:   len(supporting) > 0,
		Supporting: supporting,
	}
}

func (v *ClaimVerifier) deepDiveSpec(key string, target domain.DigDeeperTarget) domain.SearchSpec {
	days := v.policy.DeepDiveDays
	if days <= 0 {
		days = defaultDeepDiveDays
	}
	return domain.SearchSpec{
		Name:       key,
		Query:      target.Query,
		Category:   domain.CategoryMainstream,
		Topic:      domain.TopicNews,
		Depth:      domain.DepthAdvanced,
		MaxResults: positiveOr(v.policy.DeepDiveMaxResults, defaultFollowUpResult),
		Days:       days,
	}
}

func (v *ClaimVerifier) factCheckSpec(key string, target domain.FactCheckTarget) domain.SearchSpec {
	return domain.SearchSpec{
		Name:           key,
		Query:          target.Query,
		Category:       domain.CategoryMainstream,
		Topic:          domain.TopicNews,
		Depth:          domain.DepthAdvanced,
		MaxResults:     positiveOr(v.policy.FactCheckMaxResults, defaultFollowUpResult),
		IncludeDomains: v.policy.CredibleDomains,
		Days:           v.policy.FactCheckDays,
	}
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
