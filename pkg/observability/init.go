package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const (
	tracerName = "listview"
	meterName  = "listview"
)

// Providers is the telemetry a listview command runs with.
type Providers struct {
	// Tracer records scenario and step spans.
	Tracer trace.Tracer

	// Meter backs the row cache and list view instruments. Every configured
	// exporter reads from it.
	Meter metric.Meter

	// Logger writes to Config.LogWriter through a TracingHandler.
	Logger *slog.Logger

	// MetricsHandler serves Meter in the Prometheus text format. It is nil
	// unless Config.Prometheus is set.
	MetricsHandler http.Handler

	// Shutdown flushes and stops every exporter. Call it once before exit.
	Shutdown func(ctx context.Context) error
}

// shutdownStack collects exporter shutdowns and runs them newest first.
type shutdownStack []func(ctx context.Context) error

func (s *shutdownStack) push(fn func(ctx context.Context) error) { *s = append(*s, fn) }

func (s shutdownStack) run(ctx context.Context) error {
	var errs []error

	for _, fn := range slices.Backward(s) {
		errs = append(errs, fn(ctx))
	}

	return errors.Join(errs...)
}

// Init builds the tracer, meter and logger for cfg.
//
// Spans are exported only when OTLPEndpoint is set. Metrics go to one
// MeterProvider whose readers are the OTLP periodic reader and, with
// Prometheus set, the Prometheus exporter behind MetricsHandler. With neither
// reader the meter is a no-op.
func Init(cfg Config) (Providers, error) {
	ctx := context.Background()

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return Providers{}, err
	}

	var stack shutdownStack

	tp, err := buildTracerProvider(ctx, cfg, res, &stack)
	if err != nil {
		return Providers{}, err
	}

	readers, handler, err := metricReaders(ctx, cfg)
	if err != nil {
		return Providers{}, errors.Join(err, stack.run(ctx))
	}

	mp := buildMeterProvider(res, readers, &stack)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	logger := slog.New(NewTracingHandler(newLogHandler(cfg), cfg))
	logger.Debug("telemetry ready",
		"otlp", cfg.OTLPEndpoint != "",
		"prometheus", handler != nil,
		"metric_readers", len(readers))

	timeout := time.Duration(cfg.ShutdownTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultShutdownTimeoutSec * time.Second
	}

	return Providers{
		Tracer:         tp.Tracer(tracerName),
		Meter:          mp.Meter(meterName),
		Logger:         logger,
		MetricsHandler: handler,
		Shutdown: func(shutdownCtx context.Context) error {
			deadlineCtx, cancel := context.WithTimeout(shutdownCtx, timeout)
			defer cancel()

			return stack.run(deadlineCtx)
		},
	}, nil
}

func buildResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		attribute.String("app.mode", string(cfg.Mode)),
	}

	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}

	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}

	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	return res, nil
}

func buildTracerProvider(
	ctx context.Context, cfg Config, res *resource.Resource, stack *shutdownStack,
) (trace.TracerProvider, error) {
	if cfg.OTLPEndpoint == "" {
		return nooptrace.NewTracerProvider(), nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	if len(cfg.OTLPHeaders) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.OTLPHeaders))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRatio > 0 {
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRatio)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	)
	stack.push(tp.Shutdown)

	return tp, nil
}

// metricReaders returns the readers the meter provider exports through and
// the Prometheus handler when that exporter is enabled.
func metricReaders(ctx context.Context, cfg Config) ([]sdkmetric.Reader, http.Handler, error) {
	var (
		readers []sdkmetric.Reader
		handler http.Handler
	)

	if cfg.OTLPEndpoint != "" {
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}

		if len(cfg.OTLPHeaders) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.OTLPHeaders))
		}

		exporter, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("create metric exporter: %w", err)
		}

		readers = append(readers, sdkmetric.NewPeriodicReader(exporter))
	}

	if cfg.Prometheus {
		reader, promHandler, err := prometheusReader()
		if err != nil {
			return nil, nil, err
		}

		readers = append(readers, reader)
		handler = promHandler
	}

	return readers, handler, nil
}

// buildMeterProvider registers every reader on one provider. Shutting the
// provider down shuts its readers down.
func buildMeterProvider(
	res *resource.Resource, readers []sdkmetric.Reader, stack *shutdownStack,
) metric.MeterProvider {
	if len(readers) == 0 {
		return noopmetric.NewMeterProvider()
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, r := range readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	stack.push(mp.Shutdown)

	return mp
}

// ParseOTLPHeaders parses "key=value,key=value" into gRPC metadata.
// Pairs without "=" are skipped; nil means no usable pair.
func ParseOTLPHeaders(raw string) map[string]string {
	var headers map[string]string

	for pair := range strings.SplitSeq(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}

		if headers == nil {
			headers = make(map[string]string)
		}

		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	return headers
}
