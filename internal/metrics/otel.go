package metrics

import (
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// NewMeterProvider builds an OpenTelemetry MeterProvider backed by the
// default Prometheus registry, so instruments created through either the
// promauto vectors above or an otel.Meter share the one /metrics endpoint
// A5's server exposes.
func NewMeterProvider() (*sdkmetric.MeterProvider, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)), nil
}
