package reasoning

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

type ollamaChatRequest struct {
	Model     string           `json:"model"`
	Messages  []domain.Message `json:"messages"`
	Stream    bool             `json:"stream"`
	Format    string           `json:"format,omitempty"`
	KeepAlive int              `json:"keep_alive"`
	Options   map[string]any   `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// OllamaClient sends conversations to a local Ollama chat endpoint.
type OllamaClient struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  httpclient.NewPooledClient(timeout),
	}
}

// Chat sends the conversation without streaming. JSONOutput maps to
// format "json".
func (c *OllamaClient) Chat(ctx context.Context, req domain.ChatRequest) (*domain.LLMResponse, error) {
	reqBody := ollamaChatRequest{
		Model:     c.Model,
		Messages:  req.Messages,
		Stream:    false,
		KeepAlive: -1,
		Options: map[string]any{
			"temperature": generationTemperature,
		},
	}
	if req.JSONOutput {
		reqBody.Format = "json"
	}
	if req.MaxTokens > 0 {
		reqBody.Options["num_predict"] = req.MaxTokens
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/chat", bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call chat endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}

	return &domain.LLMResponse{
		Text: strings.TrimSpace(chatResp.Message.Content),
		Done: chatResp.Done,
	}, nil
}

// Version returns the model name.
func (c *OllamaClient) Version() string {
	return c.Model
}

var _ domain.LLMClient = (*OllamaClient)(nil)
