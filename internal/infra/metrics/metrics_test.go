package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSearch(t *testing.T) {
	before := testutil.ToFloat64(SearchOutcomesTotal.WithLabelValues("unit_test_search", OutcomeEmpty))

	RecordSearch("unit_test_search", OutcomeEmpty)

	after := testutil.ToFloat64(SearchOutcomesTotal.WithLabelValues("unit_test_search", OutcomeEmpty))
	assert.Equal(t, before+1, after)
}

func TestRecordCandidates(t *testing.T) {
	RecordCandidates("unit_test_roster", "alpha", 3)
	assert.GreaterOrEqual(t, testutil.ToFloat64(CandidatesTotal.WithLabelValues("unit_test_roster", "alpha")), 3.0)
}

func TestPush(t *testing.T) {
	t.Run("empty url is a no-op", func(t *testing.T) {
		assert.NoError(t, Push(context.Background(), "", "marketcolor", "run"))
	})

	t.Run("pushes to the gateway with run grouping", func(t *testing.T) {
		var calls atomic.Int32
		var path atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			path.Store(r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		RecordRun("success", time.Now())
		require.NoError(t, Push(context.Background(), srv.URL, "marketcolor", "run-1"))

		assert.Equal(t, int32(1), calls.Load())
		assert.True(t, strings.HasPrefix(path.Load().(string), "/metrics/job/marketcolor/run_id/run-1"))
	})

	t.Run("gateway error is returned", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		assert.Error(t, Push(context.Background(), srv.URL, "marketcolor", ""))
	})
}
