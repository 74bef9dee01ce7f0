package logger

import "strings"

// Field keys shared by process log lines.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldHandleID  = "handle_id"
	FieldError     = "error"

	FieldBinary   = "binary"
	FieldArgv     = "argv"
	FieldPID      = "pid"
	FieldDir      = "dir"
	FieldExitCode = "exit_code"
	FieldTimedOut = "timed_out"
	FieldAttempt  = "attempt"
)

// Fields builds a field map from alternating key-value pairs. A trailing key
// without a value and non-string keys are dropped.
//
//	logger.Info("done", logger.Fields("pid", 4242, "exit_code", 0))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ProcessFields describes a spawned process. The argv is joined with spaces
// for display only; it is never re-parsed.
func ProcessFields(pid int, argv []string) map[string]interface{} {
	m := map[string]interface{}{
		FieldPID:  pid,
		FieldArgv: strings.Join(argv, " "),
	}
	if len(argv) > 0 {
		m[FieldBinary] = argv[0]
	}
	return m
}

// ExitFields describes how a process finished.
func ExitFields(code int, timedOut bool) map[string]interface{} {
	return map[string]interface{}{
		FieldExitCode: code,
		FieldTimedOut: timedOut,
	}
}
