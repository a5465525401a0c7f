package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RegisterStoreGauge exports the number of entries an in-process store currently holds as
// <namespace>_store_entries. entries is called on every collection and must be cheap.
func RegisterStoreGauge(
	meterProvider metric.MeterProvider,
	namespace, backend string,
	entries func() int,
) error {
	meter := meterProvider.Meter(namespace)
	backendAttr := metric.WithAttributes(attribute.String("backend", backend))

	_, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_store_entries", namespace),
		metric.WithDescription("Number of entries held by the store, including expired ones not yet swept"),
		metric.WithUnit("{entry}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(entries()), backendAttr)
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create store gauge: %w", err)
	}
	return nil
}
