package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMeter initializes the OpenTelemetry metrics pipeline that backs
// RecordIncrement/RecordHistogram/RecordGauge (spec §4.8), a sibling of
// InitTracer using the same stdout-exporter-for-development approach.
func InitMeter(serviceName string, logger *slog.Logger) (func(context.Context) error, error) {
	exporter, err := stdoutmetric.New()
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	otel.SetMeterProvider(mp)

	logger.Info("OpenTelemetry metrics initialized", slog.String("service", serviceName))

	return mp.Shutdown, nil
}
