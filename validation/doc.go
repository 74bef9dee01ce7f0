// Package validation provides configuration and option validation that
// reports failures as INVALID_INPUT AppErrors.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    Stdout string `mapstructure:"stdout" validate:"omitempty,oneof=capture inherit discard"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.NonNegative("grace_period", opts.GracePeriod)
//	err := v.Err()
package validation
