package rssfeed

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"marketcolor/internal/domain"
	"marketcolor/internal/infra/htmltext"
	"marketcolor/internal/infra/httpclient"
	"marketcolor/internal/infra/metrics"
)

const (
	searchPrefix    = "rss_"
	defaultMaxItems = 10
	userAgent       = "marketcolor/1.0 (+rss)"
)

// Feed reads one mainstream RSS/Atom headline feed.
type Feed struct {
	name     string
	url      string
	maxItems int
	parser   *gofeed.Parser
	logger   *slog.Logger
}

func NewFeed(name, url string, maxItems int, timeout time.Duration, logger *slog.Logger) *Feed {
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	fp := gofeed.NewParser()
	fp.Client = httpclient.NewPooledClient(timeout)
	fp.UserAgent = userAgent
	return &Feed{
		name:     searchPrefix + name,
		url:      url,
		maxItems: maxItems,
		parser:   fp,
		logger:   logger,
	}
}

var _ domain.StoryFeed = (*Feed)(nil)

// Name is the candidate-set key, "rss_<configured name>".
func (f *Feed) Name() string { return f.name }

// Pull never fails: a fetch or parse error yields an empty slice.
func (f *Feed) Pull(ctx context.Context) []domain.StoryCandidate {
	parsed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		f.logger.WarnContext(ctx, "rss_feed_failed",
			slog.String("feed", f.name),
			slog.String("error", err.Error()))
		metrics.RecordSearch(f.name, metrics.OutcomeError)
		return []domain.StoryCandidate{}
	}

	candidates := make([]domain.StoryCandidate, 0, f.maxItems)
	for _, item := range parsed.Items {
		if len(candidates) == f.maxItems {
			break
		}
		if item == nil {
			continue
		}
		title := htmltext.Strip(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		snippet := htmltext.Strip(item.Description)
		if snippet == "" {
			snippet = htmltext.Strip(item.Content)
		}
		candidates = append(candidates, domain.NewStoryCandidate(
			title, link, snippet, item.Published, domain.CategoryMainstream, f.name))
	}

	outcome := metrics.OutcomeOK
	if len(candidates) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RecordSearch(f.name, outcome)
	metrics.RecordCandidates(f.name, string(domain.CategoryMainstream), len(candidates))
	f.logger.DebugContext(ctx, "rss_feed_pulled",
		slog.String("feed", f.name),
		slog.Int("items", len(candidates)))
	return candidates
}
