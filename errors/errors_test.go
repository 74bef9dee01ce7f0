package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestNew_TraitsFromCode(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		status    int
		retryable bool
	}{
		{ErrCodeProcessFailed, ExitFailure, true},
		{ErrCodeProcessTimeout, ExitTimeout, true},
		{ErrCodeCommandNotFound, ExitNotFound, false},
		{ErrCodePermissionDenied, ExitPermissionDenied, false},
		{ErrCodeSpawnFailed, ExitFailure, true},
		{ErrCodeServiceUnavailable, ExitFailure, true},
		{ErrCodeInvalidInput, ExitUsage, false},
		{ErrorCode("SOMETHING_ELSE"), ExitFailure, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			err := New(tc.code, "msg")
			if err.Code != tc.code || err.Message != "msg" {
				t.Errorf("unexpected error %+v", err)
			}
			if err.ExitStatus != tc.status || ExitStatusFor(tc.code) != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, err.ExitStatus)
			}
			if err.Retryable != tc.retryable || IsRetryableCode(tc.code) != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, err.Retryable)
			}
		})
	}
}

func TestAppError_ProcessFailed_ExitStatus(t *testing.T) {
	tests := []struct {
		code   int
		status int
	}{
		{2, 2},
		{42, 42},
		{-15, ExitFailure},
		{300, ExitFailure},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprint(tc.code), func(t *testing.T) {
			err := ProcessFailed("ls", tc.code)
			if err.ExitStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, err.ExitStatus)
			}
			if err.Details["exit_code"] != tc.code {
				t.Errorf("expected exit_code=%d, got %v", tc.code, err.Details["exit_code"])
			}
		})
	}
}

func TestAppError_ProcessTimeout(t *testing.T) {
	err := ProcessTimeout("sleep", 1500*time.Millisecond)
	if err.ExitStatus != ExitTimeout {
		t.Errorf("expected %d, got %d", ExitTimeout, err.ExitStatus)
	}
	if err.Details["timeout_seconds"] != 1.5 {
		t.Errorf("expected timeout_seconds=1.5, got %v", err.Details["timeout_seconds"])
	}
	if !strings.Contains(err.Message, "1.5s") {
		t.Errorf("expected message to mention 1.5s, got %q", err.Message)
	}
}

func TestFromSpawnError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   ErrorCode
		status int
	}{
		{"lookup", &exec.Error{Name: "nope", Err: exec.ErrNotFound}, ErrCodeCommandNotFound, ExitNotFound},
		{"missing path", &fs.PathError{Op: "fork/exec", Path: "/x", Err: fs.ErrNotExist}, ErrCodeCommandNotFound, ExitNotFound},
		{"permission", &fs.PathError{Op: "fork/exec", Path: "/x", Err: fs.ErrPermission}, ErrCodePermissionDenied, ExitPermissionDenied},
		{"other", stderrors.New("boom"), ErrCodeSpawnFailed, ExitFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FromSpawnError("nope", tc.err)
			if got.Code != tc.code {
				t.Errorf("expected %s, got %s", tc.code, got.Code)
			}
			if got.ExitStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, got.ExitStatus)
			}
			if !stderrors.Is(got, tc.err) {
				t.Error("expected original error in cause chain")
			}
		})
	}

	if FromSpawnError("x", nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestAppError_InvalidInput_Success(t *testing.T) {
	err := InvalidInput("timeout", "must be positive")
	if err.Code != ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", err.Code)
	}
	if err.Details["field"] != "timeout" {
		t.Errorf("expected field=timeout, got %v", err.Details["field"])
	}
	if err.ExitStatus != ExitUsage {
		t.Errorf("expected status %d, got %d", ExitUsage, err.ExitStatus)
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := CommandNotFound("ls").WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := Validation("bad").WithDetail("k", "v")
	if err.Details["k"] != "v" {
		t.Errorf("expected k=v, got %v", err.Details["k"])
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"ServiceUnavailable", ServiceUnavailable("runner"), ErrCodeServiceUnavailable, ExitFailure, true},
		{"CommandNotFound", CommandNotFound("x"), ErrCodeCommandNotFound, ExitNotFound, false},
		{"PermissionDenied", PermissionDenied("x"), ErrCodePermissionDenied, ExitPermissionDenied, false},
		{"ProcessTimeout", ProcessTimeout("x", time.Second), ErrCodeProcessTimeout, ExitTimeout, true},
		{"Validation", Validation("bad input"), ErrCodeInvalidInput, ExitUsage, false},
		{"InvalidInput", InvalidInput("", "bad"), ErrCodeInvalidInput, ExitUsage, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.ExitStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.ExitStatus)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestAppError_AsAppError_Success(t *testing.T) {
	appErr := Validation("bad")
	wrapped := fmt.Errorf("wrap: %w", appErr)

	got, ok := AsAppError(wrapped)
	if !ok || got != appErr {
		t.Fatal("expected AsAppError to unwrap the AppError")
	}
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected AsAppError to fail for plain error")
	}
}

func TestExitStatusOf(t *testing.T) {
	if got := ExitStatusOf(nil); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := ExitStatusOf(fmt.Errorf("x: %w", CommandNotFound("x"))); got != ExitNotFound {
		t.Errorf("expected %d, got %d", ExitNotFound, got)
	}
	if got := ExitStatusOf(fmt.Errorf("plain")); got != ExitFailure {
		t.Errorf("expected %d, got %d", ExitFailure, got)
	}
}
