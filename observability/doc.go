// Package observability provides OpenTelemetry tracing and metrics for
// child processes.
//
// Library code only talks to the global otel API, so nothing is exported
// until a binary installs providers:
//
//	shutdown, err := observability.Setup(ctx, cfg.Telemetry, "shellwrap", version.Get().Short())
//	defer shutdown(ctx)
//
// Spans:
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanProcessRun)
//	defer span.End()
//
// Metrics:
//
//	observability.Processes().RecordStart(ctx, "ls")
package observability
