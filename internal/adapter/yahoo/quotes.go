package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"marketcolor/internal/domain"
	"marketcolor/internal/infra/httpclient"
)

const (
	userAgent      = "Mozilla/5.0"
	maxConcurrency = 4
)

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta chartMeta `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartMeta struct {
	Symbol             string   `json:"symbol"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	PreviousClose      *float64 `json:"previousClose"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
}

// QuoteClient reads the latest price of each snapshot symbol from the chart
// endpoint. Each symbol is fetched independently.
type QuoteClient struct {
	BaseURL string
	Client  *http.Client
	logger  *slog.Logger
}

func NewQuoteClient(baseURL string, timeout time.Duration, logger *slog.Logger) *QuoteClient {
	return &QuoteClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  httpclient.NewPooledClient(timeout),
		logger:  logger,
	}
}

var _ domain.QuoteSource = (*QuoteClient)(nil)

// Snapshot returns one entry per symbol in request order. A failing symbol is
// reported as unavailable and does not affect the others.
func (c *QuoteClient) Snapshot(ctx context.Context, symbols []domain.QuoteSymbol) []domain.QuoteSnapshot {
	out := make([]domain.QuoteSnapshot, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for i, sym := range symbols {
		g.Go(func() error {
			snap, err := c.fetch(gctx, sym)
			if err != nil {
				c.logger.WarnContext(ctx, "quote_unavailable",
					slog.String("symbol", sym.Symbol),
					slog.String("error", err.Error()))
				snap = domain.QuoteSnapshot{Name: sym.Name, Symbol: sym.Symbol}
			}
			out[i] = snap
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (c *QuoteClient) fetch(ctx context.Context, sym domain.QuoteSymbol) (domain.QuoteSnapshot, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", c.BaseURL, url.PathEscape(sym.Symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.QuoteSnapshot{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.Client.Do(req)
	if err != nil {
		return domain.QuoteSnapshot{}, fmt.Errorf("chart request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.QuoteSnapshot{}, fmt.Errorf("chart returned status %d", resp.StatusCode)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return domain.QuoteSnapshot{}, fmt.Errorf("decode chart: %w", err)
	}
	if chart.Chart.Error != nil {
		return domain.QuoteSnapshot{}, fmt.Errorf("chart error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return domain.QuoteSnapshot{}, errors.New("chart has no result")
	}

	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice == nil {
		return domain.QuoteSnapshot{}, errors.New("chart has no market price")
	}
	prev := meta.PreviousClose
	if prev == nil {
		prev = meta.ChartPreviousClose
	}
	if prev == nil || *prev == 0 {
		return domain.QuoteSnapshot{}, errors.New("chart has no previous close")
	}

	price := *meta.RegularMarketPrice
	return domain.QuoteSnapshot{
		Name:      sym.Name,
		Symbol:    sym.Symbol,
		Price:     price,
		ChangePct: (price - *prev) / *prev * 100,
		Available: true,
	}, nil
}
