package process

import (
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/kbukum/shellwrap/logger"
)

// Handle wraps a running process together with the argument vector that
// launched it. Every Native capability is forwarded unchanged; Check adds a
// waiting exit-status check.
//
// A Handle exclusively owns its process. Callers that let a Handle go without
// waiting leave the child running.
type Handle struct {
	id     string
	native Native
	argv   []string
}

// NewHandle wraps native. argv is copied.
func NewHandle(native Native, argv []string) *Handle {
	return &Handle{
		id:     uuid.NewString(),
		native: native,
		argv:   append([]string(nil), argv...),
	}
}

// ID is a unique identifier used to correlate log lines and spans.
func (h *Handle) ID() string { return h.id }

// Argv returns a copy of the argument vector used to launch the process.
func (h *Handle) Argv() []string { return append([]string(nil), h.argv...) }

// Native returns the underlying process.
func (h *Handle) Native() Native { return h.native }

// Pid returns the operating system process id.
func (h *Handle) Pid() int { return h.native.Pid() }

// Poll reports the exit code without blocking.
func (h *Handle) Poll() (code int, exited bool) { return h.native.Poll() }

// Wait blocks until the process exits and returns its exit code.
func (h *Handle) Wait() (int, error) { return h.native.Wait() }

// Done is closed once the process has exited.
func (h *Handle) Done() <-chan struct{} { return h.native.Done() }

// Terminate sends SIGTERM.
func (h *Handle) Terminate() error { return h.native.Terminate() }

// Kill sends SIGKILL.
func (h *Handle) Kill() error { return h.native.Kill() }

// Signal delivers sig.
func (h *Handle) Signal(sig os.Signal) error { return h.native.Signal(sig) }

// Stdout returns the captured standard output, or nil.
func (h *Handle) Stdout() io.Reader { return h.native.Stdout() }

// Stderr returns the captured standard error, or nil.
func (h *Handle) Stderr() io.Reader { return h.native.Stderr() }

// Close releases the captured stream readers.
func (h *Handle) Close() error { return h.native.Close() }

// Check waits for the process to exit and returns a *ProcessError if the
// exit code is non-zero.
//
// Building the error drains the captured standard error stream. If the
// caller has already read from Stderr, ProcessError.Stderr holds only what
// was left.
func (h *Handle) Check() error {
	code, err := h.native.Wait()
	if err != nil {
		return err
	}
	if code == 0 {
		return nil
	}
	perr := newProcessError(h, code)
	h.log().Debug("process check failed", logger.ExitFields(code, false))
	return perr
}

func (h *Handle) log() *logger.Logger {
	return logger.Get(loggerName).WithFields(logger.Fields(logger.FieldHandleID, h.id))
}
