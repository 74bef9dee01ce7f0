package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanProcessStart = "process.start"
	SpanProcessRun   = "process.run"
	SpanHelperCall   = "shellwrap.call"
)

// Attribute keys. Process keys follow the OpenTelemetry process conventions.
const (
	AttrServiceName     = "service.name"
	AttrServiceVersion  = "service.version"
	AttrEnvironment     = "deployment.environment"
	AttrProcessBinary   = "process.executable.name"
	AttrProcessArgs     = "process.command_args"
	AttrProcessPID      = "process.pid"
	AttrProcessExitCode = "process.exit.code"
	AttrHandleID        = "shellwrap.handle.id"
	AttrTimeoutSeconds  = "shellwrap.timeout_seconds"
	AttrTimedOut        = "shellwrap.timed_out"
)

// Tracer returns the shellwrap tracer from the global provider. Until a
// provider is installed it is a no-op.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// StartSpan starts a span with the shellwrap tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// StartProcessSpan starts a span describing argv. The executable name and the
// full argument vector are recorded as attributes.
func StartProcessSpan(ctx context.Context, name string, argv []string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.StringSlice(AttrProcessArgs, argv)}
	if len(argv) > 0 {
		attrs = append(attrs, attribute.String(AttrProcessBinary, argv[0]))
	}
	return StartSpan(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan marks span failed when err is non-nil and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
