package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRowsAllocated  = "listview.rows.allocated"
	metricRowsReleased   = "listview.rows.released"
	metricRowsDisposed   = "listview.rows.disposed"
	metricRowsAttached   = "listview.rows.attached"
	metricRowsDetached   = "listview.rows.detached"
	metricRowsRelocated  = "listview.rows.relocated"
	metricSpliceDuration = "listview.splice.duration.seconds"

	attrTemplate = "template"
	attrSource   = "source"

	// SourcePool marks a row handed out from the pool.
	SourcePool = "pool"
	// SourceNew marks a freshly created row.
	SourceNew = "new"
)

// spliceBucketBoundaries covers 1µs to 100ms; splices run on the UI thread
// and anything slower than a frame is already a problem.
var spliceBucketBoundaries = []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 0.016, 0.05, 0.1}

// RowCacheMetrics holds the instruments for row pool traffic.
type RowCacheMetrics struct {
	allocated metric.Int64Counter
	released  metric.Int64Counter
	disposed  metric.Int64Counter
}

// NewRowCacheMetrics creates row pool instruments from the given meter.
func NewRowCacheMetrics(mt metric.Meter) (*RowCacheMetrics, error) {
	allocated, err := mt.Int64Counter(metricRowsAllocated,
		metric.WithDescription("Rows handed out by the row cache"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRowsAllocated, err)
	}

	released, err := mt.Int64Counter(metricRowsReleased,
		metric.WithDescription("Rows returned to the row cache"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRowsReleased, err)
	}

	disposed, err := mt.Int64Counter(metricRowsDisposed,
		metric.WithDescription("Rows disposed because their pool was full"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRowsDisposed, err)
	}

	return &RowCacheMetrics{allocated: allocated, released: released, disposed: disposed}, nil
}

// RecordAlloc records one allocation; source is SourcePool or SourceNew.
func (m *RowCacheMetrics) RecordAlloc(ctx context.Context, templateID, source string) {
	m.allocated.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrTemplate, templateID),
		attribute.String(attrSource, source),
	))
}

// RecordRelease records a row returned to its pool.
func (m *RowCacheMetrics) RecordRelease(ctx context.Context, templateID string) {
	m.released.Add(ctx, 1, metric.WithAttributes(attribute.String(attrTemplate, templateID)))
}

// RecordDispose records a disposed row.
func (m *RowCacheMetrics) RecordDispose(ctx context.Context, templateID string) {
	m.disposed.Add(ctx, 1, metric.WithAttributes(attribute.String(attrTemplate, templateID)))
}

// ViewMetrics holds the instruments for list view reconciliation.
type ViewMetrics struct {
	attached  metric.Int64Counter
	detached  metric.Int64Counter
	relocated metric.Int64Counter
	splice    metric.Float64Histogram
}

// NewViewMetrics creates list view instruments from the given meter.
func NewViewMetrics(mt metric.Meter) (*ViewMetrics, error) {
	attached, err := mt.Int64Counter(metricRowsAttached,
		metric.WithDescription("Items that received a row"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRowsAttached, err)
	}

	detached, err := mt.Int64Counter(metricRowsDetached,
		metric.WithDescription("Items that gave their row back"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRowsDetached, err)
	}

	relocated, err := mt.Int64Counter(metricRowsRelocated,
		metric.WithDescription("Rows kept across a splice but moved"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRowsRelocated, err)
	}

	splice, err := mt.Float64Histogram(metricSpliceDuration,
		metric.WithDescription("Splice reconciliation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(spliceBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSpliceDuration, err)
	}

	return &ViewMetrics{attached: attached, detached: detached, relocated: relocated, splice: splice}, nil
}

// RecordReconcile records the row operations performed by one splice or render.
func (m *ViewMetrics) RecordReconcile(ctx context.Context, attached, detached, relocated int) {
	if attached > 0 {
		m.attached.Add(ctx, int64(attached))
	}

	if detached > 0 {
		m.detached.Add(ctx, int64(detached))
	}

	if relocated > 0 {
		m.relocated.Add(ctx, int64(relocated))
	}
}

// RecordSplice records how long a splice took to reconcile.
func (m *ViewMetrics) RecordSplice(ctx context.Context, duration time.Duration) {
	m.splice.Record(ctx, duration.Seconds())
}
