package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/bibbank/loanintake/internal/application/usecase"

var tracer = otel.Tracer(instrumentationName)

// Metrics holds the intake counters. A nil *Metrics records nothing.
type Metrics struct {
	submitted          metric.Int64Counter
	validationFailures metric.Int64Counter
	exports            metric.Int64Counter
}

// NewMetrics registers the intake counters on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	submitted, err := meter.Int64Counter("intake_applications_submitted_total",
		metric.WithDescription("Loan applications stored"))
	if err != nil {
		return nil, fmt.Errorf("create submitted counter: %w", err)
	}
	failures, err := meter.Int64Counter("intake_validation_failures_total",
		metric.WithDescription("Submissions rejected by field validation"))
	if err != nil {
		return nil, fmt.Errorf("create validation counter: %w", err)
	}
	exports, err := meter.Int64Counter("intake_exports_total",
		metric.WithDescription("Admin exports by format and outcome"))
	if err != nil {
		return nil, fmt.Errorf("create exports counter: %w", err)
	}
	return &Metrics{submitted: submitted, validationFailures: failures, exports: exports}, nil
}

// NoopMetrics returns counters that discard every measurement.
func NoopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	return m
}

func (m *Metrics) recordSubmitted(ctx context.Context) {
	if m != nil {
		m.submitted.Add(ctx, 1)
	}
}

func (m *Metrics) recordValidationFailure(ctx context.Context, fields int) {
	if m != nil {
		m.validationFailures.Add(ctx, 1, metric.WithAttributes(attribute.Int("fields", fields)))
	}
}

func (m *Metrics) recordExport(ctx context.Context, format string, empty bool) {
	if m != nil {
		m.exports.Add(ctx, 1, metric.WithAttributes(
			attribute.String("format", format),
			attribute.Bool("empty", empty),
		))
	}
}
