package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "aren"

// StartProcessSpan starts the span covering one processed input.
func StartProcessSpan(ctx context.Context, deviceID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "process_input",
		trace.WithAttributes(attribute.String("device.id", deviceID)))
}

// StartStageSpan starts a span for one pipeline stage ("identify", "decide",
// "dispatch").
func StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, stage)
}

// StartHandlerSpan starts a span for a capability handler invocation.
func StartHandlerSpan(ctx context.Context, capability string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "handler.invoke",
		trace.WithAttributes(attribute.String("capability", capability)))
}
