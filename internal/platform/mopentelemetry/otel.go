// Package mopentelemetry adapts a common/mopentelemetry-style
// bootstrap to the engine: a tracer-only Telemetry (no metric/log
// providers — the engine emits structured logs via mlog and diagnostic
// counters via pkg/eventbatch/diagnostics instead) that installs the
// global tracer provider. The spans themselves are opened by the
// uploader through the global provider: one per rollover and one per
// HTTP send attempt, the latter carrying the Rsa-Retry-Reason as a span
// attribute on retries.
package mopentelemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry holds the tracer provider and its shutdown hook.
type Telemetry struct {
	ServiceName    string
	ServiceVersion string
	CollectorEndpoint string

	TracerProvider *sdktrace.TracerProvider

	shutdown func(context.Context) error
}

func (tl *Telemetry) newResource() (*sdkresource.Resource, error) {
	return sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(tl.ServiceName),
			semconv.ServiceVersion(tl.ServiceVersion),
		),
	)
}

func (tl *Telemetry) newTracerExporter(ctx context.Context) (*otlptrace.Exporter, error) {
	return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(tl.CollectorEndpoint), otlptracegrpc.WithInsecure())
}

// Init builds the tracer provider and installs it globally. Callers
// must invoke the returned shutdown func on exit.
func (tl *Telemetry) Init(ctx context.Context) (func(context.Context) error, error) {
	res, err := tl.newResource()
	if err != nil {
		return nil, fmt.Errorf("mopentelemetry: resource: %w", err)
	}

	exp, err := tl.newTracerExporter(ctx)
	if err != nil {
		return nil, fmt.Errorf("mopentelemetry: tracer exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	tl.TracerProvider = tp
	tl.shutdown = tp.Shutdown

	return tl.shutdown, nil
}

// Tracer returns the engine's named tracer.
func (tl *Telemetry) Tracer() trace.Tracer {
	return otel.Tracer("rudder-go-batch-engine")
}

// HandleSpanError records err on span and marks it failed.
func HandleSpanError(span *trace.Span, message string, err error) {
	(*span).SetStatus(codes.Error, message+": "+err.Error())
	(*span).RecordError(err)
}

// SetRetryReasonAttribute attaches the Rsa-Retry-Reason token to a retry
// span.
func SetRetryReasonAttribute(span trace.Span, reason string) {
	span.SetAttributes(attribute.String("rsa.retry_reason", reason))
}
