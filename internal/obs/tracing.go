package obs

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "javalineage.analysis"

// InstallTracerProvider builds a TracerProvider that writes spans to w when
// verbose is set, or discards them (no exporter, just span bookkeeping)
// otherwise, and installs it as the process-global provider via
// otel.SetTracerProvider, the same global-provider convention
// otelgin.Middleware expects. Returns the provider so the caller can shut it
// down on exit.
func InstallTracerProvider(w io.Writer, verbose bool) (*sdktrace.TracerProvider, error) {
	var tp *sdktrace.TracerProvider
	if verbose {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
		tp = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	} else {
		tp = sdktrace.NewTracerProvider()
	}
	otel.SetTracerProvider(tp)
	return tp, nil
}

// StartPhase opens a span named for one of the pipeline phases (load,
// dataflow, typehierarchy, branch, endpoint) under the shared tracer.
func StartPhase(ctx context.Context, phase string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, phase)
}
