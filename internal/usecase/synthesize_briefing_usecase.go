package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marketcolor/internal/domain"
	"marketcolor/internal/infra/metrics"
)

const (
	synthesisPurpose          = "synthesis"
	defaultSynthesisMaxTokens = 6000
)

// SynthesisInput is everything the final reasoning call sees.
type SynthesisInput struct {
	Now      time.Time
	Curation domain.CurationResult
	Report   domain.VerificationReport
	History  domain.HistoryRecord
	Quotes   []domain.QuoteSnapshot
}

// BriefingSynthesizer turns the run's material into the delivery-ready text.
type BriefingSynthesizer struct {
	llm      domain.LLMClient
	policy   domain.SynthesisPolicy
	location *time.Location
	logger   *slog.Logger
}

func NewBriefingSynthesizer(llm domain.LLMClient, policy domain.SynthesisPolicy, location *time.Location, logger *slog.Logger) *BriefingSynthesizer {
	return &BriefingSynthesizer{
		llm:      llm,
		policy:   policy,
		location: location,
		logger:   logger,
	}
}

// Synthesize returns the raw text of the reasoning service. Unlike the
// planner and curator there is no fallback: without text there is nothing
// to deliver.
func (s *BriefingSynthesizer) Synthesize(ctx context.Context, in SynthesisInput) (string, error) {
	start := time.Now()
	resp, err := s.llm.Chat(ctx, domain.ChatRequest{
		Messages:  buildSynthesisMessages(NewTimeContext(in.Now, s.location), in, s.policy),
		MaxTokens: positiveOr(s.policy.MaxTokens, defaultSynthesisMaxTokens),
	})
	if err != nil {
		metrics.RecordLLMCall(synthesisPurpose, "error")
		return "", fmt.Errorf("synthesize briefing: %w", err)
	}
	metrics.RecordLLMCall(synthesisPurpose, "ok")

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", domain.ErrEmptyBriefing
	}
	if !resp.Done {
		s.logger.WarnContext(ctx, "synthesis_truncated", slog.Int("chars", len(text)))
	}
	s.logger.InfoContext(ctx, "synthesis_completed",
		slog.Int("chars", len(text)),
		slog.Int("stories_in", len(in.Curation.TopStories)),
		slog.Bool("history_present", !in.History.IsEmpty()),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return text, nil
}
