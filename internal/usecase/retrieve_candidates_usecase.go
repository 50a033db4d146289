package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"marketcolor/internal/domain"
)

const defaultSearchConcurrency = 6

// CandidateRetriever runs the fixed roster, the planner's dynamic specs and
// every feed against their sources, merging results by search name.
type CandidateRetriever struct {
	searcher    domain.StorySearcher
	feeds       []domain.StoryFeed
	roster      []domain.SearchSpec
	concurrency int
	logger      *slog.Logger
}

func NewCandidateRetriever(
	searcher domain.StorySearcher,
	feeds []domain.StoryFeed,
	roster []domain.SearchSpec,
	concurrency int,
	logger *slog.Logger,
) *CandidateRetriever {
	if concurrency <= 0 {
		concurrency = defaultSearchConcurrency
	}
	return &CandidateRetriever{
		searcher:    searcher,
		feeds:       feeds,
		roster:      roster,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Retrieve executes every branch on a bounded pool. Branches are independent:
// a failing source records zero candidates under its name and the rest go on.
// There is no minimum total; an empty set is a valid result.
func (r *CandidateRetriever) Retrieve(ctx context.Context, dynamic []domain.SearchSpec) *domain.CandidateSet {
	start := time.Now()
	set := domain.NewCandidateSet()

	specs := make([]domain.SearchSpec, 0, len(r.roster)+len(dynamic))
	specs = append(specs, r.roster...)
	specs = append(specs, dynamic...)

	r.logger.InfoContext(ctx, "retrieval_started",
		slog.Int("searches", len(specs)),
		slog.Int("feeds", len(r.feeds)),
		slog.Int("concurrency", r.concurrency))

	// Branch functions never return errors, so the group only bounds concurrency.
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for _, spec := range specs {
		g.Go(func() error {
			set.Append(spec.Name, r.searcher.Search(ctx, spec)...)
			return nil
		})
	}
	for _, feed := range r.feeds {
		g.Go(func() error {
			set.Append(feed.Name(), feed.Pull(ctx)...)
			return nil
		})
	}
	_ = g.Wait()

	empty := 0
	for _, n := range set.Counts() {
		if n == 0 {
			empty++
		}
	}
	r.logger.InfoContext(ctx, "retrieval_completed",
		slog.Int("total_candidates", set.Total()),
		slog.Int("sources", len(set.Names())),
		slog.Int("empty_sources", empty),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return set
}
