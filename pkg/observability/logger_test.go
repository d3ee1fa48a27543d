package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/listview/pkg/observability"
)

func TestTracingHandler_InjectsTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	handler := observability.NewTracingHandler(inner, observability.Config{
		ServiceName:    "test-svc",
		ServiceVersion: "v1.2.3",
		Environment:    "test",
		Mode:           observability.ModeCLI,
	})
	logger := slog.New(handler)

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.InfoContext(ctx, "test message")

	var record map[string]any

	err = json.Unmarshal(buf.Bytes(), &record)
	require.NoError(t, err)

	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", record["trace_id"])
	assert.Equal(t, "0102030405060708", record["span_id"])
	assert.Equal(t, "test-svc", record["service"])
	assert.Equal(t, "test", record["env"])
	assert.Equal(t, "cli", record["mode"])
	assert.Equal(t, "v1.2.3", record["version"])
}

func TestTracingHandler_NoTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewTracingHandler(inner, observability.Config{
		ServiceName: "listview",
		Mode:        observability.ModeTerminal,
	}))

	logger.InfoContext(context.Background(), "no span")

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	_, hasTraceID := record["trace_id"]
	assert.False(t, hasTraceID)
	assert.Equal(t, "listview", record["service"])
	assert.Equal(t, "terminal", record["mode"])

	_, hasEnv := record["env"]
	assert.False(t, hasEnv)
}

func TestTracingHandler_WithGroupKeepsServiceTopLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(observability.NewTracingHandler(inner, observability.Config{
		ServiceName: "svc",
		Mode:        observability.ModeCLI,
	}))

	logger.WithGroup("list").Info("spliced", "attached", 2)

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "svc", record["service"])

	group, ok := record["list"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 2, group["attached"], 0)
}

func TestTracingHandler_WarningsBecomeSpanEvents(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	var buf bytes.Buffer

	logger := slog.New(observability.NewTracingHandler(
		slog.NewJSONHandler(&buf, nil), observability.DefaultConfig()))

	ctx, span := tp.Tracer("test").Start(context.Background(), "step")
	logger.InfoContext(ctx, "rendered", "rows", 3)
	logger.WarnContext(ctx, "expectation failed", "step", 2)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1)

	event := spans[0].Events[0]
	assert.Equal(t, "expectation failed", event.Name)
	assert.Contains(t, event.Attributes, attribute.String("log.level", "WARN"))
	assert.Contains(t, event.Attributes, attribute.String("step", "2"))
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte(span.SpanContext().TraceID().String())))
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, observability.ParseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, observability.ParseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, observability.ParseLogLevel(" error "))
	assert.Equal(t, slog.LevelInfo, observability.ParseLogLevel("chatty"))
}

func TestDiscardLogger(t *testing.T) {
	t.Parallel()

	logger := observability.DiscardLogger()

	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}
