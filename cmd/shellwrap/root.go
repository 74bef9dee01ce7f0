package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kbukum/shellwrap/config"
	"github.com/kbukum/shellwrap/errors"
	"github.com/kbukum/shellwrap/logger"
	"github.com/kbukum/shellwrap/observability"
	"github.com/kbukum/shellwrap/process"
	"github.com/kbukum/shellwrap/shellwrap"
	"github.com/kbukum/shellwrap/version"
)

const appName = "shellwrap"

// appConfig is the complete configuration of the shellwrap binary.
type appConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Exec      shellwrap.Config     `yaml:"exec" mapstructure:"exec"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

func (c *appConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Exec.ApplyDefaults()
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = c.Environment
	}
}

func (c *appConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Exec.Validate(); err != nil {
		return fmt.Errorf("config.exec: %w", err)
	}
	return nil
}

// app holds the state shared by subcommands once the root has initialized.
type app struct {
	configFile string
	logLevel   string

	cfg      appConfig
	shutdown func(context.Context) error

	// setupTelemetry starts tracing and metrics; replaced in tests.
	setupTelemetry func(ctx context.Context, cfg observability.Config, name, version string) (func(context.Context) error, error)
}

func newApp() *app {
	return &app{setupTelemetry: observability.Setup}
}

// execute runs the command tree and flushes telemetry on every exit path,
// including failed commands where cobra skips the post-run hooks.
func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	defer a.close()
	return root.ExecuteContext(ctx)
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Build command lines from named parameters and run them",
		Long: `shellwrap turns named parameters into command-line options and runs the
result as a subprocess with an optional working directory, environment and
deadline. It does not use a shell: no quoting, globbing or pipelines.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (default: searched .shellwrap.yml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.InvalidInput("flags", err.Error()).WithCause(err)
	})

	root.AddCommand(newRunCmd(a), newArgvCmd(), newVersionCmd())
	return root
}

// init loads configuration and brings up logging and telemetry.
func (a *app) init(cmd *cobra.Command, _ []string) error {
	var opts []config.Option
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	if err := config.LoadConfig(appName, &a.cfg, opts...); err != nil {
		return errors.InvalidInput("config", err.Error()).WithCause(err)
	}
	if a.logLevel != "" {
		a.cfg.Logging.Level = a.logLevel
	}
	if a.cfg.Version == "" {
		a.cfg.Version = version.Get().Short()
	}
	a.cfg.ApplyDefaults()
	if err := a.cfg.Validate(); err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return appErr
		}
		return errors.InvalidInput("config", err.Error()).WithCause(err)
	}

	logger.Init(a.cfg.Logging)

	shutdown, err := a.setupTelemetry(cmd.Context(), a.cfg.Telemetry, a.cfg.Name, a.cfg.Version)
	if err != nil {
		logger.WithComponent("cli").WithError(err).Warn("telemetry disabled")
		shutdown = func(context.Context) error { return nil }
	}
	a.shutdown = shutdown

	logger.WithComponent("cli").Debug("initialized", version.Get().Fields())
	return nil
}

// close flushes and stops telemetry. It is safe to call more than once.
func (a *app) close() {
	if a.shutdown == nil {
		return
	}
	shutdown := a.shutdown
	a.shutdown = nil

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.WithComponent("cli").WithError(err).Warn("telemetry shutdown failed")
	}
}

// message renders err for the terminal. Process failures use their own
// wording; AppErrors drop the code prefix.
func message(err error) string {
	if perr, ok := process.AsProcessError(err); ok {
		return perr.Error()
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// flagChanged reports whether the user set name on the command line.
func flagChanged(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	return f != nil && f.Changed
}
