package process

import (
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kbukum/shellwrap/errors"
)

// ProcessError is a snapshot of a process that exited with a non-zero code.
type ProcessError struct {
	// ExitCode is the process exit code; signal deaths are negative.
	ExitCode int
	// Argv is the argument vector the process was launched with.
	Argv []string
	// Stderr is whatever remained unread on the captured error stream.
	Stderr string
	// HasTimeout is set when the process ran under a deadline.
	HasTimeout bool
	// Timeout is the deadline, when HasTimeout is set.
	Timeout time.Duration
	// TimedOut is set when the watchdog terminated the process.
	TimedOut bool
}

func newProcessError(h *Handle, code int) *ProcessError {
	return &ProcessError{
		ExitCode: code,
		Argv:     h.Argv(),
		Stderr:   drain(h.native.Stderr()),
	}
}

// drain reads r to EOF. Read errors end the drain silently.
func drain(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(r)
	return string(b)
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("Process timed out after %s seconds", formatSeconds(e.Timeout))
	}
	return fmt.Sprintf("Process exited with code %d", e.ExitCode)
}

// AppError converts the failure into the shared error model.
func (e *ProcessError) AppError() *errors.AppError {
	var appErr *errors.AppError
	if e.TimedOut {
		appErr = errors.ProcessTimeout(binaryOf(e.Argv), e.Timeout)
	} else {
		appErr = errors.ProcessFailed(binaryOf(e.Argv), e.ExitCode)
	}
	appErr.WithDetail("argv", e.Argv).WithCause(e)
	if e.Stderr != "" {
		appErr.WithDetail("stderr", e.Stderr)
	}
	return appErr
}

// AsProcessError extracts a *ProcessError from err's chain.
func AsProcessError(err error) (*ProcessError, bool) {
	var perr *ProcessError
	if stderrors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}

// formatSeconds renders d in seconds without trailing zeros: 10s -> "10",
// 50ms -> "0.05".
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func binaryOf(argv []string) string {
	if len(argv) == 0 {
		return ""
	}
	return argv[0]
}
