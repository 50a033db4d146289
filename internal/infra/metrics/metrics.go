// Package metrics provides Prometheus metrics for briefing runs.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry holds every marketcolor collector. It is private so that a push
// carries only this job's series.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Search outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

var (
	// CandidatesTotal counts normalized candidates per search name.
	CandidatesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketcolor",
			Name:      "candidates_total",
			Help:      "Candidates produced per search name",
		},
		[]string{"search", "category"},
	)

	// SearchOutcomesTotal counts search executions by outcome.
	SearchOutcomesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketcolor",
			Name:      "search_outcomes_total",
			Help:      "Search and feed executions by outcome",
		},
		[]string{"source", "outcome"},
	)

	// StageDuration measures pipeline stage duration.
	StageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marketcolor",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	// LLMCallsTotal counts reasoning service calls.
	LLMCallsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketcolor",
			Name:      "llm_calls_total",
			Help:      "Reasoning service calls by purpose and status",
		},
		[]string{"purpose", "status"},
	)

	// StructuredFallbacksTotal counts planner/curator outputs that fell back to defaults.
	StructuredFallbacksTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketcolor",
			Name:      "structured_fallbacks_total",
			Help:      "Structured reasoning outputs replaced by their documented default",
		},
		[]string{"purpose"},
	)

	// DeliveryChunksTotal counts delivery messages.
	DeliveryChunksTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketcolor",
			Name:      "delivery_chunks_total",
			Help:      "Delivered message chunks by status",
		},
		[]string{"status"},
	)

	// FactChecksTotal counts fact-check targets by verification result.
	FactChecksTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketcolor",
			Name:      "fact_checks_total",
			Help:      "Fact-check targets by coverage result",
		},
		[]string{"verified"},
	)

	// LastRunTimestamp records the completion time of the last run.
	LastRunTimestamp = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "marketcolor",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run by status",
		},
		[]string{"status"},
	)
)

// RecordSearch records one search or feed execution.
func RecordSearch(source, outcome string) {
	SearchOutcomesTotal.WithLabelValues(source, outcome).Inc()
}

// RecordCandidates adds n candidates for a search name.
func RecordCandidates(search, category string, n int) {
	CandidatesTotal.WithLabelValues(search, category).Add(float64(n))
}

// ObserveStage records a stage duration.
func ObserveStage(stage string, d time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordLLMCall records a reasoning service call.
func RecordLLMCall(purpose, status string) {
	LLMCallsTotal.WithLabelValues(purpose, status).Inc()
}

// RecordStructuredFallback records a planner/curator fallback.
func RecordStructuredFallback(purpose string) {
	StructuredFallbacksTotal.WithLabelValues(purpose).Inc()
}

// RecordDeliveryChunk records one delivered chunk.
func RecordDeliveryChunk(status string) {
	DeliveryChunksTotal.WithLabelValues(status).Inc()
}

// RecordFactCheck records one fact-check result.
func RecordFactCheck(verified bool) {
	FactChecksTotal.WithLabelValues(fmt.Sprintf("%t", verified)).Inc()
}

// RecordRun stamps the run completion time.
func RecordRun(status string, at time.Time) {
	LastRunTimestamp.WithLabelValues(status).Set(float64(at.Unix()))
}

// Push sends the registry to a Pushgateway. An empty url disables pushing.
func Push(ctx context.Context, url, job, runID string) error {
	if url == "" {
		return nil
	}
	pusher := push.New(url, job).Gatherer(Registry)
	if runID != "" {
		pusher = pusher.Grouping("run_id", runID)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
