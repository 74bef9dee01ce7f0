package main

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/shellwrap/cmdline"
	"github.com/kbukum/shellwrap/errors"
	"github.com/kbukum/shellwrap/logger"
	"github.com/kbukum/shellwrap/process"
	"github.com/kbukum/shellwrap/shellwrap"
	"github.com/kbukum/shellwrap/util"
)

// paramFlags are the flags shared by run and argv for building parameters.
type paramFlags struct {
	params []string
	flags  []string
}

func (p *paramFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&p.params, "param", "p", nil, "named parameter key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&p.flags, "flag", "f", nil, "boolean parameter key (repeatable)")
}

// named converts the flag values into ordered parameters: every --param in
// order, then every --flag.
func (p *paramFlags) named() (cmdline.Params, error) {
	var out cmdline.Params
	for _, kv := range p.params {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, errors.InvalidInput("param", "expected key=value, got "+kv)
		}
		out.Set(k, v)
	}
	for _, k := range p.flags {
		if k == "" {
			return nil, errors.InvalidInput("flag", "empty parameter key")
		}
		out.Set(k, true)
	}
	return out, nil
}

type runFlags struct {
	paramFlags

	cwd        string
	env        []string
	inheritEnv bool
	timeout    time.Duration
	grace      time.Duration
	retries    int
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Run a command built from named parameters",
		Long: `Run builds the command line from the given parameters and runs it with the
configured working directory, environment and deadline. Output is streamed
unless retries are enabled, in which case each attempt is buffered and the
last one is printed.

The exit status is the command's own, 124 when the deadline was reached and
127 when the command could not be found.`,
		Example: `  shellwrap run -p color=auto -f l -- ls /tmp
  shellwrap run --timeout 2s -- sleep 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, f, args)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.cwd, "cwd", "", "working directory")
	cmd.Flags().StringArrayVarP(&f.env, "env", "e", nil, "environment variable KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&f.inheritEnv, "inherit-env", true, "start from the current environment when --env is given")
	cmd.Flags().DurationVarP(&f.timeout, "timeout", "t", 0, "terminate the command after this long (0 disables)")
	cmd.Flags().DurationVar(&f.grace, "grace", 0, "SIGKILL a command this long after SIGTERM")
	cmd.Flags().IntVar(&f.retries, "retries", 0, "retry a failing command this many times")
	return cmd
}

func (a *app) run(cmd *cobra.Command, f *runFlags, args []string) error {
	log := logger.Get("cli")

	named, err := f.named()
	if err != nil {
		return err
	}
	options, err := f.options(cmd, a.cfg.Exec)
	if err != nil {
		return err
	}

	h := shellwrap.CreateWith(options, args[0], args[1:], named)
	log.Debug("running", logger.Fields("argv", h.Cmdline()))

	runner := a.cfg.Exec.NewRunner()
	if f.retries > 0 {
		cfg := a.cfg.Exec.Runner
		cfg.Retry = &process.RetryPolicy{MaxAttempts: f.retries + 1}
		runner = process.NewRunner(cfg)
	}

	if runner != nil {
		res, err := h.Run(cmd.Context(), runner, nil, nil)
		if res != nil {
			_, _ = cmd.OutOrStdout().Write(res.Stdout)
			_, _ = cmd.ErrOrStderr().Write(res.Stderr)
		}
		return failure(args[0], err)
	}

	p, err := h.Call(cmd.Context(), nil, nil)
	if err != nil {
		return failure(args[0], err)
	}
	defer p.Close()
	return failure(args[0], p.Check())
}

// options layers the command-line flags over the exec configuration. Output
// is streamed to the terminal unless it is buffered for retries.
func (f *runFlags) options(cmd *cobra.Command, exec shellwrap.Config) (shellwrap.Options, error) {
	base, err := exec.Options()
	if err != nil {
		return shellwrap.Options{}, errors.InvalidInput("exec", err.Error()).WithCause(err)
	}
	base.Stdout = util.Ptr(process.To(cmd.OutOrStdout()))
	base.Stderr = util.Ptr(process.To(cmd.ErrOrStderr()))
	base.Stdin = cmd.InOrStdin()

	var over cmdline.Params
	fs := cmd.Flags()
	if flagChanged(fs, "cwd") {
		over.Set(shellwrap.OptionCwd, f.cwd)
	}
	if flagChanged(fs, "timeout") {
		over.Set(shellwrap.OptionTimeout, f.timeout)
	}
	if flagChanged(fs, "env") {
		env, err := util.ParseKeyValues(f.env)
		if err != nil {
			return shellwrap.Options{}, errors.InvalidInput("env", err.Error())
		}
		if f.inheritEnv {
			env = withParentEnv(base.Env, env)
		}
		over.Set(shellwrap.OptionEnv, env)
	}
	if flagChanged(fs, "grace") {
		base.GracePeriod = util.Ptr(f.grace)
	}

	options := shellwrap.ExtractOptions(&over, base)
	if err := options.Validate(); err != nil {
		return shellwrap.Options{}, err
	}
	return options, nil
}

// withParentEnv returns base (or the process environment when base is nil)
// with overrides applied.
func withParentEnv(base, overrides map[string]string) map[string]string {
	out := base
	if out == nil {
		out = make(map[string]string)
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				out[k] = v
			}
		}
	} else {
		out = util.CloneMap(out)
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// failure maps a run error onto an AppError carrying the exit status.
func failure(binary string, err error) error {
	if err == nil {
		return nil
	}
	if perr, ok := process.AsProcessError(err); ok {
		return perr.AppError()
	}
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	return errors.FromSpawnError(binary, err)
}
