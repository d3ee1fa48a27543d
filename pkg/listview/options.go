package listview

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/listview/pkg/observability"
	"github.com/Sumatoshi-tech/listview/pkg/rowcache"
)

type config struct {
	scrollHost ScrollHost
	logger     *slog.Logger
	meter      metric.Meter
	retention  int
	strict     bool
}

func defaultConfig() config {
	return config{
		logger:    observability.DiscardLogger(),
		retention: rowcache.DefaultRetention,
		strict:    true,
	}
}

// Option configures a ListView.
type Option func(*config)

// WithScrollHost sets the host notified of the content extent after splices.
func WithScrollHost(host ScrollHost) Option {
	return func(c *config) {
		c.scrollHost = host
	}
}

// WithLogger sets the logger for reconciliation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records row traffic and splice latency on instruments created
// from meter.
func WithMetrics(meter metric.Meter) Option {
	return func(c *config) {
		c.meter = meter
	}
}

// WithRetention sets how many free rows the row cache keeps per template id.
func WithRetention(n int) Option {
	return func(c *config) {
		c.retention = n
	}
}

// WithStrict selects the precondition policy. Strict lists (the default)
// panic on an out-of-range splice or a negative element height; lenient
// lists clamp the range and treat the height as zero.
func WithStrict(strict bool) Option {
	return func(c *config) {
		c.strict = strict
	}
}
