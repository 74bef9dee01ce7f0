package shellwrap

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/shellwrap/cmdline"
	"github.com/kbukum/shellwrap/observability"
	"github.com/kbukum/shellwrap/process"
)

// Process is the handle returned by Call. It is a *process.Handle, or a
// *process.TimedHandle when a deadline was configured.
type Process interface {
	ID() string
	Argv() []string
	Pid() int
	Poll() (code int, exited bool)
	Wait() (int, error)
	Done() <-chan struct{}
	Terminate() error
	Kill() error
	Signal(sig os.Signal) error
	Stdout() io.Reader
	Stderr() io.Reader
	Close() error
	Check() error
}

var (
	_ Process = (*process.Handle)(nil)
	_ Process = (*process.TimedHandle)(nil)
)

// Helper accumulates a command, its argument groups and nested subcommands,
// and the options used to launch it.
//
// Add mutates the helper. Bake, Copy and Subcommand return a new helper with
// its own entry list; groups and nested helpers already in the list are
// shared with the source, so a later Add on a nested helper shows up in every
// helper that embeds it.
type Helper struct {
	command string
	options Options
	entries []cmdline.Entry
}

var _ cmdline.Entry = (*Helper)(nil)

// Create returns a helper with one argument group. Option keys (_cwd, _env,
// _timeout) are taken out of named and layered over DefaultOptions.
func Create(command string, positional []string, named cmdline.Params) *Helper {
	return CreateWith(DefaultOptions(), command, positional, named)
}

// CreateWith is Create with explicit base options.
func CreateWith(base Options, command string, positional []string, named cmdline.Params) *Helper {
	named = named.Clone()
	options := ExtractOptions(&named, base)
	return &Helper{
		command: command,
		options: options,
		entries: []cmdline.Entry{cmdline.NewGroup(positional, named)},
	}
}

// Add appends positional tokens to the last argument group and merges named
// parameters into it, new values winning. When the last entry is a nested
// subcommand a new group is appended instead.
func (h *Helper) Add(positional []string, named cmdline.Params) *Helper {
	named = named.Clone()
	h.options = ExtractOptions(&named, h.options)

	if n := len(h.entries); n > 0 {
		if top, ok := h.entries[n-1].(cmdline.Group); ok {
			h.entries[n-1] = top.Extend(positional, named)
			return h
		}
	}
	h.entries = append(h.entries, cmdline.NewGroup(positional, named))
	return h
}

// Bake returns a new helper with the same entries and merged options. If any
// positional or named arguments remain after option extraction they form a
// new trailing group, so flags given here follow earlier subcommand tokens.
func (h *Helper) Bake(positional []string, named cmdline.Params) *Helper {
	named = named.Clone()
	baked := &Helper{
		command: h.command,
		options: ExtractOptions(&named, h.options),
		entries: append([]cmdline.Entry(nil), h.entries...),
	}
	if len(positional) > 0 || len(named) > 0 {
		baked.entries = append(baked.entries, cmdline.NewGroup(positional, named))
	}
	return baked
}

// Copy returns a new helper with its own entry list and the same options.
func (h *Helper) Copy() *Helper {
	return h.Bake(nil, nil)
}

// Subcommand returns a copy of h with a nested helper for command appended.
// The nested helper's arguments follow everything already in h.
func (h *Helper) Subcommand(command string, positional []string, named cmdline.Params) *Helper {
	sub := Create(command, positional, named)
	out := h.Copy()
	out.entries = append(out.entries, sub)
	return out
}

// Command returns the command name.
func (h *Helper) Command() string { return h.command }

// Options returns the accumulated options.
func (h *Helper) Options() Options { return h.options.Merge(Options{}) }

// Cmdline returns the argument vector built from the accumulated entries.
func (h *Helper) Cmdline() []string {
	return cmdline.Build(h.command, h.entries)
}

// AppendArgv appends the helper's argument vector to dst, making a helper
// usable as a nested entry.
func (h *Helper) AppendArgv(dst []string) []string {
	return cmdline.NewUnit(h.command, h.entries...).AppendArgv(dst)
}

// Prepare resolves the options and argument vector a call with the given
// arguments would use, without launching anything. h is not modified.
func (h *Helper) Prepare(positional []string, named cmdline.Params) (Options, []string, error) {
	named = named.Clone()
	options := ExtractOptions(&named, h.options)

	entries := append(append([]cmdline.Entry(nil), h.entries...), cmdline.NewGroup(positional, named))
	argv := cmdline.Build(h.command, entries)
	if err := options.Validate(); err != nil {
		return options, argv, invalid(argv, err)
	}
	return options, argv, nil
}

// Call launches the command with extra arguments appended as a final group.
// Options given here apply to this call only. With a positive timeout the
// result is a *process.TimedHandle.
//
// Creation failures such as a missing executable are returned unchanged.
// A non-zero exit is reported later by Check.
func (h *Helper) Call(ctx context.Context, positional []string, named cmdline.Params) (p Process, err error) {
	options, argv, err := h.Prepare(positional, named)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartProcessSpan(ctx, observability.SpanHelperCall, argv)
	defer func() { observability.EndSpan(span, err) }()

	cmd := options.Command(argv)
	if !options.HasTimeout() {
		ph, err := process.Start(ctx, cmd)
		if err != nil {
			return nil, err
		}
		return ph, nil
	}

	span.SetAttributes(attribute.Float64(observability.AttrTimeoutSeconds, options.Timeout.Seconds()))
	th, err := process.StartTimed(ctx, cmd, *options.Timeout)
	if err != nil {
		return nil, err
	}
	return th, nil
}

// Run executes the command to completion through runner, buffering output.
// A nil runner runs it once.
func (h *Helper) Run(ctx context.Context, runner *process.Runner, positional []string, named cmdline.Params) (*process.Result, error) {
	options, argv, err := h.Prepare(positional, named)
	if err != nil {
		return nil, err
	}
	return process.RunWithRunner(ctx, options.Command(argv), runner)
}
