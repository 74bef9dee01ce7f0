package logger

import "github.com/kbukum/shellwrap/validation"

// Log destinations. Child stdout is forwarded to the terminal, so the
// default keeps log lines off it.
const (
	OutputStderr = "stderr"
	OutputStdout = "stdout"
)

// Config contains logging configuration.
type Config struct {
	// ServiceName tags every line; filled from the service config when empty.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	Level       string `yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format      string `yaml:"format" mapstructure:"format" validate:"oneof=json console pretty text"`
	Output      string `yaml:"output" mapstructure:"output" validate:"oneof=stderr stdout"`
	NoColor     bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp   bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller      bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults fills level, format and output and turns timestamps on.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
	if c.Output == "" {
		c.Output = OutputStderr
	}
	c.Timestamp = true
}

// Validate checks the level, format and output names.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
