package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/njchilds90/gocalphad"

// SetupStdoutTracing installs a global tracer provider that prints every
// finished span to w. The returned function flushes and uninstalls it.
func SetupStdoutTracing(w io.Writer) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	return func(ctx context.Context) error {
		otel.SetTracerProvider(prev)
		return provider.Shutdown(ctx)
	}, nil
}

// StartBuildSpan opens a span around one model construction. Without
// SetupStdoutTracing the global provider is a no-op.
func StartBuildSpan(ctx context.Context, phase string, components []string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "model.build", trace.WithAttributes(
		attribute.String("model.phase", phase),
		attribute.StringSlice("model.components", components),
	))
}

// EndSpan records err, if any, and ends span.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
