package process

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Command configures a subprocess to execute.
type Command struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments, not including Binary.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is a list of KEY=VALUE entries. By default they are merged over
	// os.Environ; with ReplaceEnv they are the whole environment.
	Env []string
	// ReplaceEnv makes Env the complete child environment.
	ReplaceEnv bool
	// Stdin provides input to the process. May be nil.
	Stdin io.Reader
	// Stdout and Stderr select where the child's output goes.
	// The zero Redirect discards output.
	Stdout Redirect
	Stderr Redirect
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	// Zero disables the escalation.
	GracePeriod time.Duration
	// Timeout bounds Run with a watchdog. Start ignores it; use StartTimed.
	Timeout time.Duration
}

// Argv returns Binary followed by Args.
func (c Command) Argv() []string {
	return append([]string{c.Binary}, c.Args...)
}

func (c Command) validate() error {
	if c.Binary == "" {
		return fmt.Errorf("process: binary is required")
	}
	return nil
}

// environ resolves the child environment. nil inherits the parent's.
func (c Command) environ() []string {
	if c.ReplaceEnv {
		if c.Env == nil {
			return []string{}
		}
		return c.Env
	}
	return mergeEnv(c.Env)
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	env := os.Environ()
	return append(env, extra...)
}

type redirectMode int

const (
	modeDiscard redirectMode = iota
	modeCapture
	modeInherit
	modeWriter
)

// Redirect selects the destination of a child output stream.
type Redirect struct {
	mode redirectMode
	w    io.Writer
}

var (
	// Discard sends the stream to the null device.
	Discard = Redirect{mode: modeDiscard}
	// Capture connects the stream to a pipe read through the Handle.
	Capture = Redirect{mode: modeCapture}
	// Inherit shares the parent's stream.
	Inherit = Redirect{mode: modeInherit}
)

// To copies the stream into w.
func To(w io.Writer) Redirect {
	if w == nil {
		return Discard
	}
	return Redirect{mode: modeWriter, w: w}
}

// IsCapture reports whether the stream is captured through a pipe.
func (r Redirect) IsCapture() bool { return r.mode == modeCapture }

// String names the redirect mode.
func (r Redirect) String() string {
	switch r.mode {
	case modeCapture:
		return "capture"
	case modeInherit:
		return "inherit"
	case modeWriter:
		return "writer"
	default:
		return "discard"
	}
}

// ParseRedirect maps a configuration value to a Redirect.
func ParseRedirect(s string) (Redirect, error) {
	switch s {
	case "capture":
		return Capture, nil
	case "inherit":
		return Inherit, nil
	case "discard", "":
		return Discard, nil
	default:
		return Discard, fmt.Errorf("process: unknown redirect %q", s)
	}
}
