package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"marketcolor/internal/domain"
)

// Leading words of each system prompt, used to route mocked reasoning calls.
const (
	plannerPrompt   = "You plan web news searches"
	curatorPrompt   = "You are the news editor"
	synthesisPrompt = "You write a pre-market briefing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type mockLLMClient struct {
	mock.Mock
}

func (m *mockLLMClient) Chat(ctx context.Context, req domain.ChatRequest) (*domain.LLMResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LLMResponse), args.Error(1)
}

func (m *mockLLMClient) Version() string {
	return "mock"
}

// withSystemPrompt matches a ChatRequest whose system message starts with prefix.
func withSystemPrompt(prefix string) any {
	return mock.MatchedBy(func(req domain.ChatRequest) bool {
		return len(req.Messages) > 0 && strings.HasPrefix(req.Messages[0].Content, prefix)
	})
}

func userMessage(req domain.ChatRequest) string {
	for _, m := range req.Messages {
		if m.Role == "user" {
			return m.Content
		}
	}
	return ""
}

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, spec domain.SearchSpec) []domain.StoryCandidate {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.StoryCandidate)
}

type mockFeed struct {
	mock.Mock
}

func (m *mockFeed) Name() string {
	return m.Called().String(0)
}

func (m *mockFeed) Pull(ctx context.Context) []domain.StoryCandidate {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.StoryCandidate)
}

type mockHistoryStore struct {
	mock.Mock
}

func (m *mockHistoryStore) Load(ctx context.Context) domain.HistoryRecord {
	return m.Called(ctx).Get(0).(domain.HistoryRecord)
}

func (m *mockHistoryStore) Save(ctx context.Context, record domain.HistoryRecord) error {
	return m.Called(ctx, record).Error(0)
}

type mockQuoteSource struct {
	mock.Mock
}

func (m *mockQuoteSource) Snapshot(ctx context.Context, symbols []domain.QuoteSymbol) []domain.QuoteSnapshot {
	return m.Called(ctx, symbols).Get(0).([]domain.QuoteSnapshot)
}

type mockDeliverer struct {
	mock.Mock
}

func (m *mockDeliverer) Deliver(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

// funcSearcher answers searches through fn and records every spec it saw.
type funcSearcher struct {
	fn    func(spec domain.SearchSpec) []domain.StoryCandidate
	mu    sync.Mutex
	specs []domain.SearchSpec
}

func (s *funcSearcher) Search(_ context.Context, spec domain.SearchSpec) []domain.StoryCandidate {
	s.mu.Lock()
	s.specs = append(s.specs, spec)
	s.mu.Unlock()
	return s.fn(spec)
}

func (s *funcSearcher) seen() []domain.SearchSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SearchSpec, len(s.specs))
	copy(out, s.specs)
	return out
}

func candidate(title, url string, category domain.SourceCategory, search string) domain.StoryCandidate {
	return domain.NewStoryCandidate(title, url, "snippet for "+title, "", category, search)
}
