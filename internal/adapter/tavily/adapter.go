package tavily

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"marketcolor/internal/domain"
	"marketcolor/internal/infra/metrics"
)

// RawSearcher issues one provider request.
type RawSearcher interface {
	Search(ctx context.Context, spec domain.SearchSpec) ([]Result, error)
}

// Adapter turns provider hits into StoryCandidates. It never returns an error:
// a failing request is logged and yields no candidates. Requests pass through
// a shared rate limiter, and identical specs within a run reuse one response.
type Adapter struct {
	client  RawSearcher
	limiter *rate.Limiter
	memo    *lru.Cache[string, []Result]
	logger  *slog.Logger
}

// NewAdapter builds an adapter. A nil limiter disables rate limiting and a
// memoSize <= 0 disables the response memo.
func NewAdapter(client RawSearcher, limiter *rate.Limiter, memoSize int, logger *slog.Logger) (*Adapter, error) {
	a := &Adapter{client: client, limiter: limiter, logger: logger}
	if memoSize > 0 {
		memo, err := lru.New[string, []Result](memoSize)
		if err != nil {
			return nil, fmt.Errorf("create search memo: %w", err)
		}
		a.memo = memo
	}
	return a, nil
}

var _ domain.StorySearcher = (*Adapter)(nil)

func (a *Adapter) Search(ctx context.Context, spec domain.SearchSpec) []domain.StoryCandidate {
	if strings.TrimSpace(spec.Query) == "" {
		a.logger.WarnContext(ctx, "search_skipped_empty_query", slog.String("search", spec.Name))
		metrics.RecordSearch(spec.Name, metrics.OutcomeError)
		return []domain.StoryCandidate{}
	}

	results, err := a.fetch(ctx, spec)
	if err != nil {
		a.logger.WarnContext(ctx, "search_failed",
			slog.String("search", spec.Name),
			slog.String("query", spec.Query),
			slog.String("error", err.Error()))
		metrics.RecordSearch(spec.Name, metrics.OutcomeError)
		return []domain.StoryCandidate{}
	}

	candidates := make([]domain.StoryCandidate, 0, len(results))
	for _, r := range results {
		if strings.TrimSpace(r.URL) == "" || strings.TrimSpace(r.Title) == "" {
			continue
		}
		candidates = append(candidates, domain.NewStoryCandidate(
			r.Title, r.URL, r.Content, r.PublishedDate, spec.Category, spec.Name))
	}

	outcome := metrics.OutcomeOK
	if len(candidates) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RecordSearch(spec.Name, outcome)
	metrics.RecordCandidates(spec.Name, string(spec.Category), len(candidates))
	a.logger.DebugContext(ctx, "search_completed",
		slog.String("search", spec.Name),
		slog.Int("results", len(candidates)))
	return candidates
}

func (a *Adapter) fetch(ctx context.Context, spec domain.SearchSpec) ([]Result, error) {
	key := spec.CacheKey()
	if a.memo != nil {
		if cached, ok := a.memo.Get(key); ok {
			a.logger.DebugContext(ctx, "search_memo_hit", slog.String("search", spec.Name))
			return cached, nil
		}
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	results, err := a.client.Search(ctx, spec)
	if err != nil {
		return nil, err
	}
	if a.memo != nil {
		a.memo.Add(key, results)
	}
	return results, nil
}
