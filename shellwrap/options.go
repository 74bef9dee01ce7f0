package shellwrap

import (
	"fmt"
	"io"
	"time"

	"github.com/kbukum/shellwrap/cmdline"
	"github.com/kbukum/shellwrap/errors"
	"github.com/kbukum/shellwrap/process"
	"github.com/kbukum/shellwrap/util"
	"github.com/kbukum/shellwrap/validation"
)

// Recognized execution option keys. They are removed from the named
// parameters before the command line is built.
const (
	OptionCwd     = "_cwd"
	OptionEnv     = "_env"
	OptionTimeout = "_timeout"
)

// Options configure how a command is launched. Nil pointer fields are unset
// and fall through to the layer below when options are merged.
type Options struct {
	// Dir is the working directory. Nil uses the current directory.
	Dir *string
	// Env replaces the child environment when non-nil.
	Env map[string]string
	// Timeout makes Call return a *process.TimedHandle when positive.
	Timeout *time.Duration
	// Stdout and Stderr select the stream destinations. Nil inherits the
	// parent's stream.
	Stdout *process.Redirect
	Stderr *process.Redirect
	// Stdin feeds the child's standard input.
	Stdin io.Reader
	// GracePeriod escalates a watchdog SIGTERM to SIGKILL. Zero disables it.
	GracePeriod *time.Duration

	// errs holds option values that could not be converted.
	errs []string
}

// DefaultOptions captures both output streams.
func DefaultOptions() Options {
	return Options{
		Stdout: util.Ptr(process.Capture),
		Stderr: util.Ptr(process.Capture),
	}
}

// Merge returns a copy of o with every set field of over applied on top.
func (o Options) Merge(over Options) Options {
	out := Options{
		Dir:         util.FirstSet(over.Dir, o.Dir),
		Env:         util.CloneMap(o.Env),
		Timeout:     util.FirstSet(over.Timeout, o.Timeout),
		Stdout:      util.FirstSet(over.Stdout, o.Stdout),
		Stderr:      util.FirstSet(over.Stderr, o.Stderr),
		Stdin:       o.Stdin,
		GracePeriod: util.FirstSet(over.GracePeriod, o.GracePeriod),
		errs:        append(append([]string(nil), o.errs...), over.errs...),
	}
	if over.Env != nil {
		out.Env = util.CloneMap(over.Env)
	}
	if over.Stdin != nil {
		out.Stdin = over.Stdin
	}
	return out
}

// ExtractOptions removes _cwd, _env and _timeout from named and layers them
// over base. Other keys stay in named as command parameters. A value that
// cannot be converted does not fail here; it is reported by Validate.
func ExtractOptions(named *cmdline.Params, base Options) Options {
	plucked := cmdline.Remap(cmdline.Pluck(named, OptionCwd, OptionEnv, OptionTimeout), cmdline.Transform(cmdline.StripUnderscore))

	var over Options
	for _, p := range plucked {
		switch p.Key {
		case "cwd":
			if p.Value != nil {
				over.Dir = util.Ptr(fmt.Sprint(p.Value))
			}
		case "env":
			if p.Value == nil {
				continue
			}
			env, err := util.ToStringMap(p.Value)
			if err != nil {
				over.errs = append(over.errs, "env: "+err.Error())
				continue
			}
			over.Env = env
		case "timeout":
			if p.Value == nil {
				continue
			}
			d, err := util.ToDuration(p.Value)
			if err != nil {
				over.errs = append(over.errs, "timeout: "+err.Error())
				continue
			}
			over.Timeout = &d
		}
	}
	return base.Merge(over)
}

// Validate reports conversion failures and unusable values as an
// INVALID_INPUT AppError.
func (o Options) Validate() error {
	v := validation.New()
	for _, e := range o.errs {
		v.AddError("options", e)
	}
	if o.Timeout != nil {
		v.NonNegative("timeout", *o.Timeout)
	}
	if o.GracePeriod != nil {
		v.NonNegative("grace_period", *o.GracePeriod)
	}
	if o.Dir != nil {
		v.Required("cwd", *o.Dir)
	}
	v.EnvKeys("env", o.Env)
	return v.Err()
}

// HasTimeout reports whether a positive deadline is configured. A zero
// timeout means no deadline.
func (o Options) HasTimeout() bool {
	return o.Timeout != nil && *o.Timeout > 0
}

// Command converts the options and a built argument vector into a process
// command. argv must not be empty.
func (o Options) Command(argv []string) process.Command {
	cmd := process.Command{
		Binary: argv[0],
		Args:   append([]string(nil), argv[1:]...),
		Dir:    util.Deref(o.Dir),
		Stdin:  o.Stdin,
		Stdout: util.DerefOr(o.Stdout, process.Inherit),
		Stderr: util.DerefOr(o.Stderr, process.Inherit),
	}
	if o.Env != nil {
		cmd.ReplaceEnv = true
		cmd.Env = make([]string, 0, len(o.Env))
		for _, k := range util.SortedKeys(o.Env) {
			cmd.Env = append(cmd.Env, k+"="+o.Env[k])
		}
	}
	cmd.GracePeriod = util.Deref(o.GracePeriod)
	if o.HasTimeout() {
		cmd.Timeout = *o.Timeout
	}
	return cmd
}

// invalid wraps a validation failure for the argv it was meant for.
func invalid(argv []string, err error) error {
	if appErr, ok := errors.AsAppError(err); ok && len(argv) > 0 {
		return appErr.WithDetail("binary", argv[0])
	}
	return err
}
