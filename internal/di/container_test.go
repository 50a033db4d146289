package di_test

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketcolor/internal/adapter/benzinga"
	"marketcolor/internal/adapter/console"
	"marketcolor/internal/adapter/historystore"
	"marketcolor/internal/adapter/telegram"
	"marketcolor/internal/adapter/yahoo"
	"marketcolor/internal/di"
	"marketcolor/internal/domain"
	"marketcolor/internal/infra/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Telegram:  config.TelegramConfig{BotToken: "token", ChatID: "42", BaseURL: "http://127.0.0.1:1", MaxMessage: 4096, Timeout: time.Second},
		Search:    config.SearchConfig{APIKey: "key", BaseURL: "http://127.0.0.1:1", Timeout: time.Second, RatePerSec: 2, Burst: 2, MemoSize: 16},
		Feed:      config.FeedConfig{BenzingaBaseURL: "http://127.0.0.1:1", Timeout: time.Second, RSSEnabled: true},
		Reasoning: config.ReasoningConfig{Provider: config.ProviderAnthropic, AnthropicAPIKey: "sk", AnthropicBaseURL: "http://127.0.0.1:1", Timeout: time.Second},
		Quotes:    config.QuotesConfig{Enabled: true, BaseURL: "http://127.0.0.1:1", Timeout: time.Second},
		History:   config.HistoryConfig{Backend: config.HistoryBackendFile, Path: filepath.Join(t.TempDir(), "history.json")},
		Pipeline:  config.PipelineConfig{SearchConcurrency: 3, Timezone: "America/New_York"},
	}
}

func defaultPolicy(t *testing.T) *domain.Policy {
	t.Helper()
	p, err := config.DefaultPolicy()
	require.NoError(t, err)
	return p
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewApplicationComponents_Default(t *testing.T) {
	cfg := testConfig(t)

	c, err := di.NewApplicationComponents(cfg, defaultPolicy(t), di.Options{SaveHistory: true}, discardLogger())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	assert.NotNil(t, c.Pipeline)
	assert.IsType(t, &telegram.Client{}, c.Deliverer)
	assert.IsType(t, &historystore.FileStore{}, c.History)
	assert.IsType(t, &yahoo.QuoteClient{}, c.Quotes)
	// RSS feeds only: no professional feed without a key.
	assert.Len(t, c.Feeds, len(defaultPolicy(t).RSSFeeds))
	assert.Equal(t, "America/New_York", c.Location.String())
}

func TestNewApplicationComponents_DryRunWithProfessionalFeed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Feed.BenzingaAPIKey = "bz"
	cfg.Feed.RSSEnabled = false
	cfg.Quotes.Enabled = false
	var out bytes.Buffer

	c, err := di.NewApplicationComponents(cfg, defaultPolicy(t), di.Options{DryRun: true, Stdout: &out}, discardLogger())
	require.NoError(t, err)

	assert.IsType(t, &console.Deliverer{}, c.Deliverer)
	require.Len(t, c.Feeds, 1)
	assert.IsType(t, &benzinga.Feed{}, c.Feeds[0])
	assert.Nil(t, c.Quotes)
}

func TestNewApplicationComponents_UnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reasoning.Provider = "gpt"

	_, err := di.NewApplicationComponents(cfg, defaultPolicy(t), di.Options{}, discardLogger())
	assert.ErrorContains(t, err, "unknown reasoning provider")
}

func TestNewHistoryStore(t *testing.T) {
	mr := miniredis.RunT(t)

	store, closeFn, err := di.NewHistoryStore(config.HistoryConfig{Backend: config.HistoryBackendRedis, RedisAddr: mr.Addr()}, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	assert.IsType(t, &historystore.RedisStore{}, store)
	assert.NoError(t, closeFn())

	_, _, err = di.NewHistoryStore(config.HistoryConfig{Backend: "s3"}, discardLogger())
	assert.Error(t, err)
}

func TestLoadLocation(t *testing.T) {
	assert.Equal(t, time.UTC, di.LoadLocation("", discardLogger()))
	assert.Equal(t, time.UTC, di.LoadLocation("Mars/Olympus_Mons", discardLogger()))
}
