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

const (
	anthropicVersion      = "2023-06-01"
	defaultMaxTokens      = 4096
	generationTemperature = 0.3
)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// AnthropicClient calls the Messages API.
type AnthropicClient struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

func NewAnthropicClient(baseURL, apiKey, model string, timeout time.Duration) *AnthropicClient {
	return &AnthropicClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		Client:  httpclient.NewPooledClient(timeout),
	}
}

// Chat sends the conversation. System messages are lifted into the system
// field. With JSONOutput the assistant turn is prefilled with "{" and the
// brace is restored on the returned text.
func (c *AnthropicClient) Chat(ctx context.Context, req domain.ChatRequest) (*domain.LLMResponse, error) {
	reqBody := anthropicRequest{
		Model:       c.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: generationTemperature,
	}
	if reqBody.MaxTokens <= 0 {
		reqBody.MaxTokens = defaultMaxTokens
	}

	var system []string
	for _, m := range req.Messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		reqBody.Messages = append(reqBody.Messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}
	reqBody.System = strings.Join(system, "\n\n")
	if req.JSONOutput {
		reqBody.Messages = append(reqBody.Messages, anthropicMessage{Role: "assistant", Content: "{"})
	}
	if len(reqBody.Messages) == 0 {
		return nil, fmt.Errorf("anthropic chat: no user messages")
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal messages request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create messages request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call messages endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		var apiErr anthropicError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("messages endpoint returned %d: %s: %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("messages endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var msgResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return nil, fmt.Errorf("failed to decode messages response: %w", err)
	}

	var text strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	content := text.String()
	if req.JSONOutput && !strings.HasPrefix(strings.TrimSpace(content), "{") {
		content = "{" + content
	}

	return &domain.LLMResponse{
		Text: strings.TrimSpace(content),
		Done: msgResp.StopReason == "end_turn" || msgResp.StopReason == "stop_sequence",
	}, nil
}

// Version returns the model name.
func (c *AnthropicClient) Version() string {
	return c.Model
}

var _ domain.LLMClient = (*AnthropicClient)(nil)
