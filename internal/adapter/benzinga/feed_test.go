package benzinga_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketcolor/internal/adapter/benzinga"
	"marketcolor/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

var denylist = benzinga.NewDenylist([]string{"Prospectus", "announces pricing of", "Form 8-K"})

const newsBody = `[
  {
    "id": 101,
    "title": "<b>Nvidia</b> Shares Jump After Hyperscaler Order",
    "teaser": "<p>Shares rose 6% &amp; extended gains.</p>",
    "body": "<p>The order is worth $4B.</p><p>Analysts raised targets.</p>",
    "url": "https://www.benzinga.com/news/26/10/1",
    "created": "Thu, 15 Oct 2026 20:01:00 -0400",
    "stocks": [{"name": "NVDA"}],
    "channels": [{"name": "News"}]
  },
  {
    "id": 102,
    "title": "Acme Corp Announces Pricing Of $200M Notes",
    "teaser": "Routine financing.",
    "body": "",
    "url": "https://www.benzinga.com/news/26/10/2",
    "created": "Thu, 15 Oct 2026 19:00:00 -0400"
  },
  {
    "id": 103,
    "title": "Biotech Files Update",
    "teaser": "Company files preliminary prospectus supplement",
    "body": "",
    "url": "https://www.benzinga.com/news/26/10/3",
    "created": "Thu, 15 Oct 2026 18:00:00 -0400"
  },
  {
    "id": 104,
    "title": "Copper Hits Record On Chile Strike",
    "teaser": "",
    "body": "Mine output halted.",
    "url": "https://www.benzinga.com/news/26/10/4",
    "created": ""
  }
]`

func TestFeed_Pull(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/news", r.URL.Path)
		query = map[string]string{
			"token":    r.URL.Query().Get("token"),
			"pageSize": r.URL.Query().Get("pageSize"),
			"sort":     r.URL.Query().Get("sort"),
		}
		_, _ = io.WriteString(w, newsBody)
	}))
	defer srv.Close()

	feed := benzinga.NewFeed(srv.URL, "bz-key", 25, denylist, time.Second, testLogger())
	got := feed.Pull(context.Background())

	assert.Equal(t, "bz-key", query["token"])
	assert.Equal(t, "25", query["pageSize"])
	assert.Equal(t, "created:desc", query["sort"])

	require.Len(t, got, 2, "denylisted title and teaser are filtered")
	assert.Equal(t, "Nvidia Shares Jump After Hyperscaler Order", got[0].Title)
	assert.Equal(t, "[NVDA] Shares rose 6% & extended gains. The order is worth $4B. Analysts raised targets.", got[0].Snippet)
	assert.Equal(t, domain.CategoryProfessional, got[0].Category)
	assert.Equal(t, benzinga.SearchName, got[0].SearchName)
	assert.Equal(t, "Thu, 15 Oct 2026 20:01:00 -0400", got[0].PublishedAt)
	assert.NotContains(t, got[0].Snippet, "<")

	assert.Equal(t, "Copper Hits Record On Chile Strike", got[1].Title)
	assert.Equal(t, "Mine output halted.", got[1].Snippet)
	assert.Empty(t, got[1].PublishedAt)
}

func TestFeed_Pull_FailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "object instead of array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"error":"bad token"}`)
			},
		},
		{
			name: "truncated json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `[{"title": "x"`)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			got := benzinga.NewFeed(srv.URL, "k", 10, denylist, time.Second, testLogger()).Pull(context.Background())
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestDenylist_Matches(t *testing.T) {
	assert.True(t, denylist.Matches("Files FORM 8-K with SEC"))
	assert.True(t, denylist.Matches("clean title", "see the prospectus"))
	assert.False(t, denylist.Matches("Fed holds rates", "Powell speaks"))

	var none *benzinga.Denylist
	assert.False(t, none.Matches("prospectus"))
	assert.False(t, benzinga.NewDenylist([]string{" ", ""}).Matches("anything"))
}
