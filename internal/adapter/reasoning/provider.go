package reasoning

import (
	"fmt"
	"time"

	"marketcolor/internal/domain"
)

// Settings selects and configures the reasoning provider.
type Settings struct {
	Provider         string
	AnthropicBaseURL string
	AnthropicAPIKey  string
	AnthropicModel   string
	OllamaURL        string
	OllamaModel      string
	Timeout          time.Duration
}

// NewClient returns the LLMClient for s.Provider.
func NewClient(s Settings) (domain.LLMClient, error) {
	switch s.Provider {
	case "anthropic", "":
		return NewAnthropicClient(s.AnthropicBaseURL, s.AnthropicAPIKey, s.AnthropicModel, s.Timeout), nil
	case "ollama":
		return NewOllamaClient(s.OllamaURL, s.OllamaModel, s.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown reasoning provider %q", s.Provider)
	}
}
