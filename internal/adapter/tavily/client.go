package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marketcolor/internal/domain"
	"marketcolor/internal/infra/httpclient"
)

const defaultMaxResults = 5

// Client is a thin HTTP client for the Tavily search API.
type Client struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	// DefaultDepth applies to specs without a depth hint.
	DefaultDepth string
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		APIKey:       apiKey,
		Client:       httpclient.NewPooledClient(timeout),
		DefaultDepth: domain.DepthBasic,
	}
}

type searchRequest struct {
	Query          string   `json:"query"`
	Topic          string   `json:"topic,omitempty"`
	SearchDepth    string   `json:"search_depth,omitempty"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
	Days           int      `json:"days,omitempty"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}

// Result is one raw hit, before it is tagged with a search name.
type Result struct {
	Title         string
	URL           string
	Content       string
	PublishedDate string
}

// Search executes spec and returns the provider's hits in order.
func (c *Client) Search(ctx context.Context, spec domain.SearchSpec) ([]Result, error) {
	reqBody := searchRequest{
		Query:          spec.Query,
		Topic:          spec.Topic,
		SearchDepth:    spec.Depth,
		MaxResults:     spec.MaxResults,
		IncludeDomains: spec.IncludeDomains,
		ExcludeDomains: spec.ExcludeDomains,
		Days:           spec.Days,
	}
	if reqBody.MaxResults <= 0 {
		reqBody.MaxResults = defaultMaxResults
	}
	if reqBody.SearchDepth == "" {
		reqBody.SearchDepth = c.DefaultDepth
	}
	if reqBody.SearchDepth == "" {
		reqBody.SearchDepth = domain.DepthBasic
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]Result, 0, len(sResp.Results))
	for _, r := range sResp.Results {
		results = append(results, Result{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			PublishedDate: r.PublishedDate,
		})
	}
	return results, nil
}
