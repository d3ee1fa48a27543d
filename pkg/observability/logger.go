package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrVersion = "version"
	attrEnv     = "env"
	attrMode    = "mode"
	attrLevel   = "log.level"
)

// TracingHandler is an [slog.Handler] that stamps records with the ids of
// the span in their context. Records at or above the event level are also
// added to that span as events, so a failed scenario step carries its
// warnings in the trace.
type TracingHandler struct {
	inner      slog.Handler
	eventLevel slog.Level
}

// NewTracingHandler wraps inner. The service, version, environment and mode
// from cfg are attached once, ahead of any group.
func NewTracingHandler(inner slog.Handler, cfg Config) *TracingHandler {
	attrs := []slog.Attr{
		slog.String(attrService, cfg.ServiceName),
		slog.String(attrMode, string(cfg.Mode)),
	}

	if cfg.ServiceVersion != "" {
		attrs = append(attrs, slog.String(attrVersion, cfg.ServiceVersion))
	}

	if cfg.Environment != "" {
		attrs = append(attrs, slog.String(attrEnv, cfg.Environment))
	}

	return &TracingHandler{inner: inner.WithAttrs(attrs), eventLevel: slog.LevelWarn}
}

// Enabled implements slog.Handler.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	span := trace.SpanFromContext(ctx)

	if sc := span.SpanContext(); sc.IsValid() {
		if record.Level >= th.eventLevel && span.IsRecording() {
			span.AddEvent(record.Message, trace.WithAttributes(eventAttrs(record)...))
		}

		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	if err := th.inner.Handle(ctx, record); err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{inner: th.inner.WithAttrs(attrs), eventLevel: th.eventLevel}
}

// WithGroup implements slog.Handler.
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{inner: th.inner.WithGroup(name), eventLevel: th.eventLevel}
}

func eventAttrs(record slog.Record) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, record.NumAttrs()+1)
	out = append(out, attribute.String(attrLevel, record.Level.String()))

	record.Attrs(func(a slog.Attr) bool {
		out = append(out, attribute.String(a.Key, a.Value.Resolve().String()))

		return true
	})

	return out
}

func newLogHandler(cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	if cfg.LogJSON {
		return slog.NewJSONHandler(cfg.logWriter(), opts)
	}

	return slog.NewTextHandler(cfg.logWriter(), opts)
}

// ParseLogLevel maps "debug", "info", "warn" and "error" to slog levels.
// Anything else yields info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
