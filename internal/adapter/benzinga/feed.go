package benzinga

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marketcolor/internal/domain"
	"marketcolor/internal/infra/htmltext"
	"marketcolor/internal/infra/httpclient"
	"marketcolor/internal/infra/metrics"
)

// SearchName is the candidate-set key for the professional feed.
const SearchName = "professional_benzinga"

const defaultPageSize = 40

type article struct {
	Title    string    `json:"title"`
	Teaser   string    `json:"teaser"`
	Body     string    `json:"body"`
	URL      string    `json:"url"`
	Created  string    `json:"created"`
	Stocks   []tagName `json:"stocks"`
	Channels []tagName `json:"channels"`
}

type tagName struct {
	Name string `json:"name"`
}

// Feed pulls the newest professional wire items. Routine corporate-action
// boilerplate matching the denylist is dropped before normalization.
type Feed struct {
	BaseURL  string
	APIKey   string
	PageSize int
	Client   *http.Client

	denylist *Denylist
	logger   *slog.Logger
}

func NewFeed(baseURL, apiKey string, pageSize int, denylist *Denylist, timeout time.Duration, logger *slog.Logger) *Feed {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Feed{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		PageSize: pageSize,
		Client:   httpclient.NewPooledClient(timeout),
		denylist: denylist,
		logger:   logger,
	}
}

var _ domain.StoryFeed = (*Feed)(nil)

func (f *Feed) Name() string { return SearchName }

// Pull never fails: transport or decode errors yield an empty slice.
func (f *Feed) Pull(ctx context.Context) []domain.StoryCandidate {
	articles, err := f.fetch(ctx)
	if err != nil {
		f.logger.WarnContext(ctx, "professional_feed_failed", slog.String("error", err.Error()))
		metrics.RecordSearch(SearchName, metrics.OutcomeError)
		return []domain.StoryCandidate{}
	}

	candidates := f.normalize(articles)
	dropped := len(articles) - len(candidates)

	outcome := metrics.OutcomeOK
	if len(candidates) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RecordSearch(SearchName, outcome)
	metrics.RecordCandidates(SearchName, string(domain.CategoryProfessional), len(candidates))
	f.logger.InfoContext(ctx, "professional_feed_pulled",
		slog.Int("received", len(articles)),
		slog.Int("kept", len(candidates)),
		slog.Int("filtered", dropped))
	return candidates
}

func (f *Feed) normalize(articles []article) []domain.StoryCandidate {
	candidates := make([]domain.StoryCandidate, 0, len(articles))
	for _, a := range articles {
		title := htmltext.Strip(a.Title)
		teaser := htmltext.Strip(a.Teaser)
		if f.denylist.Matches(title, teaser) {
			continue
		}
		body := htmltext.Strip(a.Body)
		snippet := teaser
		if body != "" && body != teaser {
			snippet = strings.TrimSpace(teaser + " " + body)
		}
		if tickers := stockNames(a.Stocks); tickers != "" {
			snippet = "[" + tickers + "] " + snippet
		}
		candidates = append(candidates, domain.NewStoryCandidate(
			title, a.URL, snippet, a.Created, domain.CategoryProfessional, SearchName))
	}
	return candidates
}

func stockNames(stocks []tagName) string {
	names := make([]string, 0, len(stocks))
	for _, s := range stocks {
		if n := strings.TrimSpace(s.Name); n != "" {
			names = append(names, n)
		}
	}
	return strings.Join(names, ", ")
}

func (f *Feed) fetch(ctx context.Context) ([]article, error) {
	u, err := url.Parse(f.BaseURL + "/api/v2/news")
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("token", f.APIKey)
	q.Set("pageSize", strconv.Itoa(f.PageSize))
	q.Set("displayOutput", "full")
	q.Set("sort", "created:desc")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		// url.Error embeds the request URL, which carries the token.
		return nil, fmt.Errorf("news request failed: %w", redact(err, f.APIKey))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read news response: %w", err)
	}
	var articles []article
	if err := json.Unmarshal(body, &articles); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}
	return articles, nil
}

func redact(err error, secret string) error {
	if secret == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), secret, "REDACTED"))
}
