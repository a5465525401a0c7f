package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records vault operations.
type BusinessMetrics interface {
	// RecordOperation counts an operation by domain ("secrets"), operation ("secret_store",
	// "secret_retrieve", ...) and status ("success" or "error").
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records the operation duration in seconds as a histogram.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordOutcome counts why an operation ended the way it did ("success", "not_found",
	// "wrong_password", "consumed", "malformed", "invalid_input", "failure"). Retrieval
	// failures look identical to clients; this is the only place they are told apart.
	RecordOutcome(ctx context.Context, domain, operation, outcome string)
}

type businessMetrics struct {
	operationCounter metric.Int64Counter
	outcomeCounter   metric.Int64Counter
	durationHisto    metric.Float64Histogram
}

// NewBusinessMetrics creates BusinessMetrics on meterProvider. Metric names are prefixed
// with namespace.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of vault operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	outcomeCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operation_outcomes_total", namespace),
		metric.WithDescription("Total number of vault operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outcome counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of vault operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		outcomeCounter:   outcomeCounter,
		durationHisto:    durationHisto,
	}, nil
}

// labels builds the attribute set every vault instrument shares plus one distinguishing label.
func labels(domain, operation, key, value string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String(key, value),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1, labels(domain, operation, "status", status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(), labels(domain, operation, "status", status))
}

func (b *businessMetrics) RecordOutcome(ctx context.Context, domain, operation, outcome string) {
	b.outcomeCounter.Add(ctx, 1, labels(domain, operation, "outcome", outcome))
}

// NoOpBusinessMetrics discards everything. Used when METRICS_ENABLED is false.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (n *NoOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {
}

func (n *NoOpBusinessMetrics) RecordOutcome(context.Context, string, string, string) {}
