package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// NewPrometheusMeterProvider creates a MeterProvider whose instruments are
// exposed on the default Prometheus registry. The returned function shuts
// the provider down.
func NewPrometheusMeterProvider() (metric.MeterProvider, func(context.Context) error, error) {
	exporter, err := otelprom.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	slog.Info("Metrics initialized", "exporter", "prometheus")

	return mp, mp.Shutdown, nil
}
