package shellwrap

import (
	"time"

	"github.com/kbukum/shellwrap/process"
	"github.com/kbukum/shellwrap/util"
	"github.com/kbukum/shellwrap/validation"
)

// Config is the file/env form of the default execution options, read from
// the "exec" section. Env holds KEY=VALUE entries; config keys are
// case-folded, so variable names cannot be map keys.
type Config struct {
	Dir         string        `yaml:"dir" mapstructure:"dir"`
	Env         []string      `yaml:"env" mapstructure:"env"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period" validate:"gte=0"`
	Stdout      string        `yaml:"stdout" mapstructure:"stdout" validate:"omitempty,oneof=capture inherit discard"`
	Stderr      string        `yaml:"stderr" mapstructure:"stderr" validate:"omitempty,oneof=capture inherit discard"`

	Runner process.RunnerConfig `yaml:"runner" mapstructure:"runner"`
}

// ApplyDefaults fills unset stream modes with capture.
func (c *Config) ApplyDefaults() {
	if c.Stdout == "" {
		c.Stdout = process.Capture.String()
	}
	if c.Stderr == "" {
		c.Stderr = process.Capture.String()
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Options converts the configuration into base Options. A zero Timeout
// means no deadline and leaves the option unset.
func (c *Config) Options() (Options, error) {
	var o Options
	if c.Dir != "" {
		o.Dir = util.Ptr(c.Dir)
	}
	if len(c.Env) > 0 {
		env, err := util.ParseKeyValues(c.Env)
		if err != nil {
			return Options{}, err
		}
		o.Env = env
	}
	if c.Timeout > 0 {
		o.Timeout = util.Ptr(c.Timeout)
	}
	if c.GracePeriod > 0 {
		o.GracePeriod = util.Ptr(c.GracePeriod)
	}

	stdout, err := process.ParseRedirect(util.Coalesce(c.Stdout, "capture"))
	if err != nil {
		return Options{}, err
	}
	stderr, err := process.ParseRedirect(util.Coalesce(c.Stderr, "capture"))
	if err != nil {
		return Options{}, err
	}
	o.Stdout, o.Stderr = &stdout, &stderr
	return o, nil
}

// NewRunner builds a process.Runner from the runner section, or returns nil
// when neither retry nor breaker is configured.
func (c *Config) NewRunner() *process.Runner {
	if c.Runner.Retry == nil && c.Runner.Breaker == nil {
		return nil
	}
	return process.NewRunner(c.Runner)
}
