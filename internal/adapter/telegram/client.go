package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"marketcolor/internal/domain"
	"marketcolor/internal/infra/httpclient"
	"marketcolor/internal/infra/metrics"
)

// MaxMessageLength is the Bot API limit for one text message.
const MaxMessageLength = 4096

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Client sends briefings to one chat through the Bot API.
type Client struct {
	BaseURL    string
	BotToken   string
	ChatID     string
	MaxMessage int
	Client     *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL, botToken, chatID string, maxMessage int, timeout time.Duration, logger *slog.Logger) *Client {
	if maxMessage <= 0 || maxMessage > MaxMessageLength {
		maxMessage = MaxMessageLength
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		BotToken:   botToken,
		ChatID:     chatID,
		MaxMessage: maxMessage,
		Client:     httpclient.NewPooledClient(timeout),
		logger:     logger,
	}
}

var _ domain.Deliverer = (*Client)(nil)

// Deliver sends text in line-aligned chunks, in order. The first rejected
// chunk stops delivery and fails the run.
func (c *Client) Deliver(ctx context.Context, text string) error {
	chunks := ChunkByLines(text, c.MaxMessage)
	sent := 0
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		if err := c.Send(ctx, chunk); err != nil {
			metrics.RecordDeliveryChunk("error")
			return fmt.Errorf("%w: chunk %d/%d: %w", domain.ErrDeliveryFailed, i+1, len(chunks), err)
		}
		metrics.RecordDeliveryChunk("ok")
		sent++
	}
	if sent == 0 {
		return fmt.Errorf("%w: nothing to send", domain.ErrDeliveryFailed)
	}
	c.logger.InfoContext(ctx, "briefing_delivered", slog.Int("chunks", sent))
	return nil
}

// Send posts one message. Acceptance requires a 2xx status and "ok": true.
func (c *Client) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:    c.ChatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.BaseURL, c.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		// The request URL embeds the bot token.
		return fmt.Errorf("send request failed: %s", strings.ReplaceAll(err.Error(), c.BotToken, "REDACTED"))
	}
	defer func() { _ = resp.Body.Close() }()

	var apiResp apiResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&apiResp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && apiResp.Description != "" {
			return fmt.Errorf("telegram returned status %d: %s", resp.StatusCode, apiResp.Description)
		}
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("decode telegram response: %w", decodeErr)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram rejected message: %s", apiResp.Description)
	}
	return nil
}
