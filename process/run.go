package process

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/shellwrap/observability"
)

// DefaultGracePeriod is the SIGTERM to SIGKILL delay Run uses when the
// command does not set one.
const DefaultGracePeriod = 5 * time.Second

// Result holds the output and status of a completed subprocess.
type Result struct {
	// Argv is the argument vector the process was launched with.
	Argv []string
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the process exit code, negated signal number if killed.
	ExitCode int
	// Duration is how long the process ran.
	Duration time.Duration
}

// Run executes a subprocess and waits for it to complete, buffering both
// output streams regardless of cmd.Stdout and cmd.Stderr.
// If the context is canceled, SIGTERM is sent first, then SIGKILL after GracePeriod.
// When cmd.Timeout is set the process runs under a watchdog.
// A non-zero exit yields the Result together with a *ProcessError.
func Run(ctx context.Context, cmd Command) (result *Result, err error) {
	ctx, span := observability.StartProcessSpan(ctx, observability.SpanProcessRun, cmd.Argv())
	defer func() { observability.EndSpan(span, err) }()

	if cmd.GracePeriod == 0 {
		cmd.GracePeriod = DefaultGracePeriod
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = To(&stdout)
	cmd.Stderr = To(&stderr)

	start := time.Now()
	h, err := Start(ctx, cmd)
	if err != nil {
		return nil, err
	}
	var timed *TimedHandle
	if cmd.Timeout > 0 {
		timed = newTimedHandle(h, cmd.Timeout, cmd.GracePeriod)
		span.SetAttributes(attribute.Float64(observability.AttrTimeoutSeconds, cmd.Timeout.Seconds()))
	}
	code, waitErr := h.Wait()

	result = &Result{
		Argv:     h.Argv(),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: code,
		Duration: time.Since(start),
	}
	span.SetAttributes(attribute.Int(observability.AttrProcessExitCode, code))

	switch {
	case waitErr != nil:
		return result, fmt.Errorf("process: %w", waitErr)
	case code == 0:
		return result, nil
	case ctx.Err() != nil:
		return result, fmt.Errorf("process: killed by context: %w", ctx.Err())
	}

	perr := &ProcessError{ExitCode: code, Argv: result.Argv, Stderr: stderr.String()}
	if timed != nil {
		perr.HasTimeout = true
		perr.Timeout = timed.Timeout()
		perr.TimedOut = timed.TimedOut()
		span.SetAttributes(attribute.Bool(observability.AttrTimedOut, perr.TimedOut))
	}
	return result, perr
}
