package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/listview/pkg/observability"
)

func newManualMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestRowCacheMetrics_Record(t *testing.T) {
	t.Parallel()

	mp, reader := newManualMeter(t)

	m, err := observability.NewRowCacheMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordAlloc(ctx, "line", observability.SourceNew)
	m.RecordAlloc(ctx, "line", observability.SourcePool)
	m.RecordRelease(ctx, "line")
	m.RecordDispose(ctx, "code")

	rm := collectMetrics(t, reader)

	allocated := findMetric(rm, "listview.rows.allocated")
	require.NotNil(t, allocated)
	assert.Equal(t, int64(2), sumOf(t, allocated))

	released := findMetric(rm, "listview.rows.released")
	require.NotNil(t, released)
	assert.Equal(t, int64(1), sumOf(t, released))

	disposed := findMetric(rm, "listview.rows.disposed")
	require.NotNil(t, disposed)
	assert.Equal(t, int64(1), sumOf(t, disposed))
}

func TestViewMetrics_Record(t *testing.T) {
	t.Parallel()

	mp, reader := newManualMeter(t)

	m, err := observability.NewViewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordReconcile(ctx, 3, 1, 0)
	m.RecordSplice(ctx, time.Millisecond)

	rm := collectMetrics(t, reader)

	attached := findMetric(rm, "listview.rows.attached")
	require.NotNil(t, attached)
	assert.Equal(t, int64(3), sumOf(t, attached))

	assert.NotNil(t, findMetric(rm, "listview.rows.detached"))
	assert.NotNil(t, findMetric(rm, "listview.splice.duration.seconds"))
}
