package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestTraceContextHandler_AddsSpanIDs(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewTraceContextHandler(slog.NewJSONHandler(&buf, nil)))

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	l.InfoContext(ctx, "inside_span")
	span.End()

	entry := decodeLine(t, &buf)
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
}

func TestTraceContextHandler_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewTraceContextHandler(slog.NewJSONHandler(&buf, nil)))

	l.InfoContext(context.Background(), "outside_span")

	entry := decodeLine(t, &buf)
	assert.NotContains(t, entry, "trace_id")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithStage(WithRunID(context.Background(), "run-42"), "curate")
	FromContext(ctx, base).Info("stage_started")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "run-42", entry["marketcolor.run.id"])
	assert.Equal(t, "curate", entry["marketcolor.stage"])
	assert.Equal(t, "run-42", RunID(ctx))
	assert.Same(t, base, FromContext(context.Background(), base))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}
