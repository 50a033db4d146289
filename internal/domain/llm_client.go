package domain

import "context"

// Message is one chat turn sent to the reasoning service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest bundles the messages with generation hints.
// JSONOutput asks the provider to steer its answer toward a JSON payload; the
// caller must still treat the answer as untrusted text.
type ChatRequest struct {
	Messages   []Message
	MaxTokens  int
	JSONOutput bool
}

// LLMResponse carries the reasoning service output.
type LLMResponse struct {
	Text string
	Done bool
}

// LLMClient sends instructions to the reasoning service and returns free text.
type LLMClient interface {
	Chat(ctx context.Context, req ChatRequest) (*LLMResponse, error)
	Version() string
}
