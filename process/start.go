// Package process launches subprocesses and turns their exit status into
// structured errors.
//
// Start spawns a process and returns a Handle; StartTimed adds a deadline
// enforced by a watchdog goroutine. Both hand creation errors
// (exec.ErrNotFound, fs.ErrPermission, ...) back to the caller unchanged.
// Run is the one-shot variant that buffers all output.
//
// Captured streams are OS pipes. A child that writes more than the pipe
// buffer blocks until the caller reads, so read Stdout and Stderr before or
// while waiting when output may be large.
package process

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/shellwrap/logger"
	"github.com/kbukum/shellwrap/observability"
)

const loggerName = "process"

// Start spawns cmd and returns a Handle without waiting for it.
// Canceling ctx sends SIGTERM to the process group.
func Start(ctx context.Context, cmd Command) (h *Handle, err error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	ctx, span := observability.StartProcessSpan(ctx, observability.SpanProcessStart, cmd.Argv())
	defer func() { observability.EndSpan(span, err) }()

	metrics := observability.Processes()
	native, err := spawn(ctx, cmd, func(code int, d time.Duration) {
		metrics.RecordExit(context.Background(), cmd.Binary, code, d)
	})
	if err != nil {
		metrics.RecordSpawnError(ctx, cmd.Binary)
		logger.Get(loggerName).WithError(err).Debug("process spawn failed", logger.Fields(
			logger.FieldBinary, cmd.Binary,
		))
		return nil, err
	}
	metrics.RecordStart(ctx, cmd.Binary)

	h = NewHandle(native, cmd.Argv())
	span.SetAttributes(
		attribute.Int(observability.AttrProcessPID, h.Pid()),
		attribute.String(observability.AttrHandleID, h.ID()),
	)
	fields := logger.ProcessFields(h.Pid(), h.argv)
	fields[logger.FieldDir] = cmd.Dir
	h.log().Debug("process started", fields)
	return h, nil
}

// StartTimed spawns cmd and enforces timeout with a watchdog. When
// cmd.GracePeriod is set, a process that survives SIGTERM for that long is
// killed.
func StartTimed(ctx context.Context, cmd Command, timeout time.Duration) (*TimedHandle, error) {
	h, err := Start(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return newTimedHandle(h, timeout, cmd.GracePeriod), nil
}
