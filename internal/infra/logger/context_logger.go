package logger

import (
	"context"
	"log/slog"
)

type ContextKey string

// Run-scoped business fields, named after OTel attribute conventions.
const (
	RunIDKey ContextKey = "marketcolor.run.id"
	StageKey ContextKey = "marketcolor.stage"
)

// WithRunID tags ctx with the current run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// WithStage tags ctx with the pipeline stage being executed.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, StageKey, stage)
}

// RunID returns the run identifier carried by ctx, if any.
func RunID(ctx context.Context) string {
	if v, ok := ctx.Value(RunIDKey).(string); ok {
		return v
	}
	return ""
}

// FromContext returns base enriched with the business fields found in ctx.
func FromContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	var fields []any
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		fields = append(fields, string(RunIDKey), runID)
	}
	if stage, ok := ctx.Value(StageKey).(string); ok {
		fields = append(fields, string(StageKey), stage)
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
