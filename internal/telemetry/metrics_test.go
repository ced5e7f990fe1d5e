package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewSyncMetrics_NilProvider(t *testing.T) {
	t.Parallel()

	m, err := NewSyncMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	// nil metrics must be safe to use
	ctx := context.Background()
	m.RecordPassDuration(ctx, time.Second)
	m.RecordWriteBack(ctx, EntityElection)
	m.RecordFailure(ctx, EntityCenter)
}

func TestSyncMetrics_Record(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewSyncMetrics(provider)
	require.NoError(t, err)
	require.NotNil(t, m)

	ctx := context.Background()
	m.RecordPassDuration(ctx, 250*time.Millisecond)
	m.RecordWriteBack(ctx, EntityElection)
	m.RecordWriteBack(ctx, EntityElection)
	m.RecordFailure(ctx, EntityCenter)

	metrics := collect(t, reader)

	writes, ok := metrics["votersync_writebacks_total"]
	require.True(t, ok)
	sum, ok := writes.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)

	failures, ok := metrics["votersync_failures_total"]
	require.True(t, ok)
	fsum, ok := failures.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, fsum.DataPoints, 1)
	assert.Equal(t, int64(1), fsum.DataPoints[0].Value)

	duration, ok := metrics["votersync_pass_duration_seconds"]
	require.True(t, ok)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}
