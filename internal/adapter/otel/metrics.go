package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "aren"

// Metrics holds the dispatch pipeline instruments.
type Metrics struct {
	Decisions     metric.Int64Counter
	Confidence    metric.Float64Histogram
	HandlerErrors metric.Int64Counter
}

// NewMetrics creates all metric instruments. Without a configured meter
// provider the instruments are no-ops, so this is safe to call in any mode.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Decisions, err = meter.Int64Counter("aren.decisions",
		metric.WithDescription("Number of routing decisions, by capability"))
	if err != nil {
		return nil, err
	}

	m.Confidence, err = meter.Float64Histogram("aren.decision.confidence",
		metric.WithDescription("Confidence of routing decisions"))
	if err != nil {
		return nil, err
	}

	m.HandlerErrors, err = meter.Int64Counter("aren.handler.errors",
		metric.WithDescription("Number of capability handler failures, by capability"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordDecision counts one routing decision and records its confidence.
// Safe on a nil receiver so tests can run without instruments.
func (m *Metrics) RecordDecision(ctx context.Context, capability string, confidence float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("capability", capability))
	m.Decisions.Add(ctx, 1, attrs)
	m.Confidence.Record(ctx, confidence, attrs)
}

// RecordHandlerError counts one handler failure. Safe on a nil receiver.
func (m *Metrics) RecordHandlerError(ctx context.Context, capability string) {
	if m == nil {
		return
	}
	m.HandlerErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("capability", capability)))
}
