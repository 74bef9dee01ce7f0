package errors

// ErrorCode is a machine-readable failure class.
type ErrorCode string

const (
	ErrCodeProcessFailed      ErrorCode = "PROCESS_FAILED"
	ErrCodeProcessTimeout     ErrorCode = "PROCESS_TIMEOUT"
	ErrCodeCommandNotFound    ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodePermissionDenied   ErrorCode = "PERMISSION_DENIED"
	ErrCodeSpawnFailed        ErrorCode = "SPAWN_FAILED"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
)

// Exit statuses follow the conventions of timeout(1) and POSIX shells.
const (
	ExitFailure          = 1
	ExitUsage            = 2
	ExitTimeout          = 124
	ExitPermissionDenied = 126
	ExitNotFound         = 127
)

type traits struct {
	exitStatus int
	retryable  bool
}

// codeTraits gives each code its CLI exit status and whether running the
// same command again may succeed. Unknown codes exit with ExitFailure and
// are not retried.
var codeTraits = map[ErrorCode]traits{
	ErrCodeProcessFailed:      {ExitFailure, true},
	ErrCodeProcessTimeout:     {ExitTimeout, true},
	ErrCodeCommandNotFound:    {ExitNotFound, false},
	ErrCodePermissionDenied:   {ExitPermissionDenied, false},
	ErrCodeSpawnFailed:        {ExitFailure, true},
	ErrCodeServiceUnavailable: {ExitFailure, true},
	ErrCodeInvalidInput:       {ExitUsage, false},
}

func traitsOf(code ErrorCode) traits {
	if t, ok := codeTraits[code]; ok {
		return t
	}
	return traits{exitStatus: ExitFailure}
}

// IsRetryableCode reports whether a failure with code may succeed on retry.
func IsRetryableCode(code ErrorCode) bool {
	return traitsOf(code).retryable
}

// ExitStatusFor returns the CLI exit status for code.
func ExitStatusFor(code ErrorCode) int {
	return traitsOf(code).exitStatus
}
