package process

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/kbukum/shellwrap/logger"
	"github.com/kbukum/shellwrap/observability"
)

// TimedHandle is a Handle with a deadline. A watchdog goroutine started at
// construction terminates the process if it is still running when the
// deadline passes.
type TimedHandle struct {
	*Handle

	timeout time.Duration
	grace   time.Duration

	// exceeded is written once by the watchdog and never reset.
	exceeded atomic.Bool
	watched  chan struct{}
}

// NewTimedHandle wraps native and starts its watchdog. It does not block.
func NewTimedHandle(native Native, argv []string, timeout time.Duration) *TimedHandle {
	return newTimedHandle(NewHandle(native, argv), timeout, 0)
}

func newTimedHandle(h *Handle, timeout, grace time.Duration) *TimedHandle {
	t := &TimedHandle{
		Handle:  h,
		timeout: timeout,
		grace:   grace,
		watched: make(chan struct{}),
	}
	go t.watch()
	return t
}

// Timeout returns the configured deadline.
func (t *TimedHandle) Timeout() time.Duration { return t.timeout }

// TimedOut reports whether the watchdog terminated the process. It is true
// only once the process has actually exited, so there is a short window
// after the deadline in which it still reads false. Wait or Check first for
// an authoritative answer.
func (t *TimedHandle) TimedOut() bool {
	_, exited := t.native.Poll()
	return exited && t.exceeded.Load()
}

// WatchdogDone is closed when the watchdog has finished its work.
func (t *TimedHandle) WatchdogDone() <-chan struct{} { return t.watched }

// Check waits for exit and returns a *ProcessError carrying the deadline and
// the timed-out flag on a non-zero exit code.
func (t *TimedHandle) Check() error {
	code, err := t.native.Wait()
	if err != nil {
		return err
	}
	if code == 0 {
		return nil
	}
	perr := newProcessError(t.Handle, code)
	perr.HasTimeout = true
	perr.Timeout = t.timeout
	perr.TimedOut = t.TimedOut()
	t.log().Debug("process check failed", logger.ExitFields(code, perr.TimedOut))
	return perr
}

func (t *TimedHandle) watch() {
	defer close(t.watched)

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()
	select {
	case <-t.native.Done():
		return
	case <-timer.C:
	}

	if _, exited := t.native.Poll(); exited {
		return
	}
	t.exceeded.Store(true)
	observability.Processes().RecordTimeout(context.Background(), t.binary())
	t.log().Warn("process deadline exceeded, terminating", logger.Fields(
		"timeout", t.timeout.String(),
		logger.FieldPID, t.native.Pid(),
	))
	if err := t.native.Terminate(); err != nil {
		t.log().WithError(err).Warn("terminate failed")
	}

	if t.grace <= 0 {
		return
	}
	grace := time.NewTimer(t.grace)
	defer grace.Stop()
	select {
	case <-t.native.Done():
	case <-grace.C:
		t.log().Warn("process ignored SIGTERM, killing", logger.Fields(
			"grace_period", t.grace.String(),
		))
		if err := t.native.Kill(); err != nil {
			t.log().WithError(err).Warn("kill failed")
		}
	}
}

func (t *TimedHandle) binary() string {
	if len(t.argv) == 0 {
		return ""
	}
	return t.argv[0]
}
