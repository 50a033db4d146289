package historystore_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketcolor/internal/adapter/historystore"
	"marketcolor/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

var malformed = map[string]string{
	"truncated":        `{"headlines": ["Fed Holds"`,
	"plain text":       "yesterday we talked about oil",
	"wrong shape":      `["Fed Holds", "Oil Spikes"]`,
	"wrong field type": `{"headlines": "Fed Holds", "tickers": 3}`,
	"empty":            "",
	"binary":           "\x00\x01\x02",
}

const firstBriefing = "1. *Fed Holds Rates*: $SPY flat.\n2. *Oil Spikes*: $XOM up."
const secondBriefing = "1. **Chip Rally**: $NVDA and $AMD lead.\n👀 What to watch: CPI."

func newMiniredisStore(t *testing.T) (*historystore.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := historystore.NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	return historystore.NewRedisStore(client, "", testLogger()), mr
}

func TestFileStore_Load_Missing(t *testing.T) {
	store := historystore.NewFileStore(filepath.Join(t.TempDir(), "nope", "last.json"), testLogger())
	assert.True(t, store.Load(context.Background()).IsEmpty())
}

func TestFileStore_Load_Malformed(t *testing.T) {
	for name, content := range malformed {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "last.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			rec := historystore.NewFileStore(path, testLogger()).Load(context.Background())

			assert.True(t, rec.IsEmpty())
			assert.True(t, rec.SavedAt.IsZero())
		})
	}
}

func TestFileStore_Load_Directory(t *testing.T) {
	store := historystore.NewFileStore(t.TempDir(), testLogger())
	assert.True(t, store.Load(context.Background()).IsEmpty())
}

func TestFileStore_SaveReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "last_briefing.json")
	store := historystore.NewFileStore(path, testLogger())
	first := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	require.NoError(t, store.Save(ctx, domain.NewHistoryRecord(firstBriefing, first)))
	require.NoError(t, store.Save(ctx, domain.NewHistoryRecord(secondBriefing, second)))

	got := store.Load(ctx)
	assert.Equal(t, []string{"Chip Rally"}, got.Headlines)
	assert.Equal(t, []string{"NVDA", "AMD"}, got.Tickers)
	assert.True(t, second.Equal(got.SavedAt))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFileStore_SaveEmptyRecord(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "last.json")
	store := historystore.NewFileStore(path, testLogger())

	require.NoError(t, store.Save(ctx, domain.NewHistoryRecord("no emphasis here", time.Now())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"headlines": []`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestRedisStore_Load(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		store, _ := newMiniredisStore(t)
		assert.True(t, store.Load(context.Background()).IsEmpty())
	})

	for name, content := range malformed {
		t.Run(name, func(t *testing.T) {
			store, mr := newMiniredisStore(t)
			require.NoError(t, mr.Set(historystore.DefaultRedisKey, content))
			assert.True(t, store.Load(context.Background()).IsEmpty())
		})
	}

	t.Run("unreachable server", func(t *testing.T) {
		store, mr := newMiniredisStore(t)
		mr.Close()
		assert.True(t, store.Load(context.Background()).IsEmpty())
	})
}

func TestRedisStore_SaveReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	store, mr := newMiniredisStore(t)

	require.NoError(t, store.Save(ctx, domain.NewHistoryRecord(firstBriefing, time.Now())))
	require.NoError(t, store.Save(ctx, domain.NewHistoryRecord(secondBriefing, time.Now())))

	got := store.Load(ctx)
	assert.Equal(t, []string{"Chip Rally"}, got.Headlines)
	assert.Equal(t, []string{"NVDA", "AMD"}, got.Tickers)
	assert.Equal(t, []string{historystore.DefaultRedisKey}, mr.Keys())
}

func TestRedisStore_SaveFailsWhenUnreachable(t *testing.T) {
	store, mr := newMiniredisStore(t)
	mr.Close()
	assert.Error(t, store.Save(context.Background(), domain.NewHistoryRecord(firstBriefing, time.Now())))
}
