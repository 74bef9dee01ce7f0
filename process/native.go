package process

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// Native is the capability surface of a spawned process that a Handle
// forwards to. Start returns handles backed by os/exec; tests may supply
// their own implementation through NewHandle.
type Native interface {
	// Pid returns the operating system process id.
	Pid() int
	// Poll reports the exit code without blocking. exited is false while
	// the process is still running.
	Poll() (code int, exited bool)
	// Wait blocks until exit and returns the exit code. The error is
	// reserved for failures other than a non-zero status.
	Wait() (int, error)
	// Done is closed once the process has exited.
	Done() <-chan struct{}
	// Terminate asks the process to stop (SIGTERM).
	Terminate() error
	// Kill stops the process immediately (SIGKILL).
	Kill() error
	// Signal delivers sig to the process.
	Signal(sig os.Signal) error
	// Stdout and Stderr return the captured streams, or nil when the stream
	// was not captured.
	Stdout() io.Reader
	Stderr() io.Reader
	// Close releases the captured stream readers.
	Close() error
}

// execProcess is the os/exec backed Native.
type execProcess struct {
	cmd    *exec.Cmd
	stdout *os.File
	stderr *os.File

	started time.Time
	done    chan struct{}
	state   *os.ProcessState
	waitErr error
}

// spawn starts cmd in its own process group. onExit runs on the reaper
// goroutine once the process has been waited for.
func spawn(ctx context.Context, cmd Command, onExit func(code int, d time.Duration)) (*execProcess, error) {
	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // dynamic args are the purpose of this package
	c.Dir = cmd.Dir
	c.Env = cmd.environ()
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	p := &execProcess{cmd: c, done: make(chan struct{})}

	var childEnds []*os.File
	closeAll := func(files []*os.File) {
		for _, f := range files {
			_ = f.Close()
		}
	}

	var err error
	var out, errOut io.Writer
	if out, p.stdout, err = attach(cmd.Stdout, os.Stdout, &childEnds); err != nil {
		return nil, err
	}
	if errOut, p.stderr, err = attach(cmd.Stderr, os.Stderr, &childEnds); err != nil {
		closeAll(childEnds)
		_ = p.Close()
		return nil, err
	}
	c.Stdout, c.Stderr = out, errOut

	// Use process group so we can kill the entire tree
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// Don't let exec.CommandContext kill with SIGKILL immediately
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = cmd.GracePeriod

	if err := c.Start(); err != nil {
		closeAll(childEnds)
		_ = p.Close()
		return nil, err
	}
	// The child holds its own copies of the write ends.
	closeAll(childEnds)

	p.started = time.Now()
	go func() {
		p.waitErr = c.Wait()
		p.state = c.ProcessState
		close(p.done)
		if onExit != nil {
			onExit(exitCode(p.state), time.Since(p.started))
		}
	}()
	return p, nil
}

// attach resolves a Redirect into the writer handed to exec and, for
// Capture, the parent's read end of a fresh pipe.
func attach(r Redirect, inherit *os.File, childEnds *[]*os.File) (io.Writer, *os.File, error) {
	switch r.mode {
	case modeCapture:
		pr, pw, err := os.Pipe()
		if err != nil {
			return nil, nil, err
		}
		*childEnds = append(*childEnds, pw)
		return pw, pr, nil
	case modeInherit:
		return inherit, nil, nil
	case modeWriter:
		return r.w, nil, nil
	default:
		return nil, nil, nil
	}
}

// exitCode mirrors the conventional status encoding: the exit status for a
// normal exit, the negated signal number for a signal death.
func exitCode(state *os.ProcessState) int {
	if state == nil {
		return -1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -int(ws.Signal())
	}
	return state.ExitCode()
}

func (p *execProcess) Pid() int { return p.cmd.Process.Pid }

func (p *execProcess) Done() <-chan struct{} { return p.done }

func (p *execProcess) Poll() (int, bool) {
	select {
	case <-p.done:
		return exitCode(p.state), true
	default:
		return 0, false
	}
}

func (p *execProcess) Wait() (int, error) {
	<-p.done
	var exitErr *exec.ExitError
	if p.waitErr != nil && !errors.As(p.waitErr, &exitErr) {
		return exitCode(p.state), p.waitErr
	}
	return exitCode(p.state), nil
}

func (p *execProcess) Terminate() error { return p.signalGroup(syscall.SIGTERM) }

func (p *execProcess) Kill() error { return p.signalGroup(syscall.SIGKILL) }

func (p *execProcess) Signal(sig os.Signal) error {
	if p.exited() {
		return nil
	}
	return p.cmd.Process.Signal(sig)
}

// signalGroup signals the whole process group, falling back to the leader
// alone if the group is already gone.
func (p *execProcess) signalGroup(sig syscall.Signal) error {
	if p.exited() {
		return nil
	}
	if err := syscall.Kill(-p.cmd.Process.Pid, sig); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			err = p.cmd.Process.Signal(sig)
			if errors.Is(err, os.ErrProcessDone) {
				return nil
			}
		}
		return err
	}
	return nil
}

func (p *execProcess) exited() bool {
	_, ok := p.Poll()
	return ok
}

func (p *execProcess) Stdout() io.Reader {
	if p.stdout == nil {
		return nil
	}
	return p.stdout
}

func (p *execProcess) Stderr() io.Reader {
	if p.stderr == nil {
		return nil
	}
	return p.stderr
}

func (p *execProcess) Close() error {
	var errs []error
	for _, f := range []*os.File{p.stdout, p.stderr} {
		if f != nil {
			if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
