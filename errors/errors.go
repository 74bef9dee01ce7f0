package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os/exec"
	"time"
)

// AppError is a classified failure: its code decides the exit status and
// whether a retry is worthwhile.
type AppError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	// ExitStatus is the status a CLI reporting this error exits with.
	ExitStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets one detail and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an AppError whose exit status and retryability come from code.
func New(code ErrorCode, message string) *AppError {
	t := traitsOf(code)
	return &AppError{
		Code:       code,
		Message:    message,
		ExitStatus: t.exitStatus,
		Retryable:  t.retryable,
	}
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ProcessFailed reports a non-zero exit. An exit code a shell could have
// produced (1..255) becomes the exit status; signal deaths exit with
// ExitFailure.
func ProcessFailed(binary string, exitCode int) *AppError {
	e := New(ErrCodeProcessFailed, fmt.Sprintf("%s exited with code %d", binary, exitCode)).
		WithDetail("binary", binary).
		WithDetail("exit_code", exitCode)
	if exitCode > 0 && exitCode < 256 {
		e.ExitStatus = exitCode
	}
	return e
}

// ProcessTimeout reports a process terminated at its deadline.
func ProcessTimeout(binary string, timeout time.Duration) *AppError {
	return New(ErrCodeProcessTimeout, fmt.Sprintf("%s timed out after %s", binary, timeout)).
		WithDetail("binary", binary).
		WithDetail("timeout_seconds", timeout.Seconds())
}

func CommandNotFound(binary string) *AppError {
	return New(ErrCodeCommandNotFound, "command not found: "+binary).WithDetail("binary", binary)
}

func PermissionDenied(binary string) *AppError {
	return New(ErrCodePermissionDenied, "permission denied: "+binary).WithDetail("binary", binary)
}

// FromSpawnError classifies an error from starting binary, keeping err as
// the cause.
func FromSpawnError(binary string, err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	switch {
	case stderrors.Is(err, exec.ErrNotFound), stderrors.Is(err, fs.ErrNotExist):
		appErr = CommandNotFound(binary)
	case stderrors.Is(err, fs.ErrPermission):
		appErr = PermissionDenied(binary)
	default:
		appErr = New(ErrCodeSpawnFailed, "failed to start "+binary).WithDetail("binary", binary)
	}
	return appErr.WithCause(err)
}

// ServiceUnavailable reports calls to name rejected by an open breaker.
func ServiceUnavailable(name string) *AppError {
	return New(ErrCodeServiceUnavailable, name+" is temporarily unavailable").WithDetail("service", name)
}

// InvalidInput reports a bad value for field. An empty field adds no detail.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, "invalid input: "+reason)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation reports failed checks summarized by message.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// ExitStatusOf returns the CLI exit status for err: 0 for nil, the
// AppError's status when there is one, ExitFailure otherwise.
func ExitStatusOf(err error) int {
	if err == nil {
		return 0
	}
	if appErr, ok := AsAppError(err); ok && appErr.ExitStatus != 0 {
		return appErr.ExitStatus
	}
	return ExitFailure
}
