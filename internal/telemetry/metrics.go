// Package telemetry provides OpenTelemetry metrics for the voter sync job.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetricsMeterName is the name used for the sync metrics meter
const SyncMetricsMeterName = "github.com/vncsmyrnk/votersync/sync"

const (
	EntityElection = "election"
	EntityCenter   = "center"
)

// SyncMetrics holds the instruments recorded by the sync scheduler.
// A nil *SyncMetrics is valid and records nothing.
type SyncMetrics struct {
	passDuration metric.Float64Histogram
	writeBacks   metric.Int64Counter
	failures     metric.Int64Counter
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	passDuration, err := meter.Float64Histogram(
		"votersync_pass_duration_seconds",
		metric.WithDescription("Duration of reconciliation passes in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60),
	)
	if err != nil {
		return nil, err
	}

	writeBacks, err := meter.Int64Counter(
		"votersync_writebacks_total",
		metric.WithDescription("Number of cached voter totals rewritten"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"votersync_failures_total",
		metric.WithDescription("Number of entities whose voter total could not be reconciled"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		passDuration: passDuration,
		writeBacks:   writeBacks,
		failures:     failures,
	}, nil
}

// RecordPassDuration records how long a full pass took.
func (m *SyncMetrics) RecordPassDuration(ctx context.Context, duration time.Duration) {
	if m == nil || m.passDuration == nil {
		return
	}
	m.passDuration.Record(ctx, duration.Seconds())
}

// RecordWriteBack counts one cache write for the given entity kind.
func (m *SyncMetrics) RecordWriteBack(ctx context.Context, entity string) {
	if m == nil || m.writeBacks == nil {
		return
	}
	m.writeBacks.Add(ctx, 1, metric.WithAttributes(attribute.String("entity", entity)))
}

// RecordFailure counts one entity that could not be reconciled.
func (m *SyncMetrics) RecordFailure(ctx context.Context, entity string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("entity", entity)))
}
