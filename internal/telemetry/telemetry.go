// Package telemetry configures OpenTelemetry tracing. Without an OTLP
// endpoint everything stays a no-op.
package telemetry

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Shutdown flushes pending spans.
type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// Setup installs a global tracer provider exporting to endpoint over gRPC.
// Exporter errors are logged and tracing is left disabled; they never stop
// the caller from starting.
func Setup(ctx context.Context, serviceName, endpoint string, insecure bool) Shutdown {
	if endpoint == "" {
		return noop
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		log.Warn().Err(err).Msg("telemetry: otlp exporter disabled")
		return noop
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		log.Warn().Err(err).Msg("telemetry: resource detection failed")
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	log.Info().Str("endpoint", endpoint).Msg("telemetry: tracing enabled")

	return provider.Shutdown
}
