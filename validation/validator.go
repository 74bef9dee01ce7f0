package validation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kbukum/shellwrap/errors"
)

// FieldError is one failed check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

// FieldErrors lists failed checks in the order they ran.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	msgs := make([]string, len(fe))
	for i, e := range fe {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether field failed at least one check.
func (fe FieldErrors) Has(field string) bool {
	return slices.ContainsFunc(fe, func(e FieldError) bool { return e.Field == field })
}

// Validator accumulates field errors from chained checks:
//
//	err := validation.New().
//	    Required("cwd", dir).
//	    NonNegative("timeout", timeout).
//	    Err()
type Validator struct {
	errs FieldErrors
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failed check.
func (v *Validator) AddError(field, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}

// Check records message for field unless ok holds.
func (v *Validator) Check(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool { return len(v.errs) > 0 }

// Errors returns the failed checks.
func (v *Validator) Errors() FieldErrors { return v.errs }

// Err returns nil when every check passed, and otherwise an INVALID_INPUT
// AppError whose cause is the FieldErrors.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	errs := slices.Clone(v.errs)
	return errors.Validation(errs.Error()).
		WithDetail("fields", errs).
		WithCause(errs)
}

// Required fails for an empty or blank string.
func (v *Validator) Required(field, value string) *Validator {
	return v.Check(strings.TrimSpace(value) != "", field, "is required")
}

// NonNegative fails for a negative duration.
func (v *Validator) NonNegative(field string, d time.Duration) *Validator {
	return v.Check(d >= 0, field, "must not be negative")
}

// Positive fails unless the duration is greater than zero.
func (v *Validator) Positive(field string, d time.Duration) *Validator {
	return v.Check(d > 0, field, "must be positive")
}

// EnvKeys fails for every variable name that cannot appear in a KEY=VALUE
// environment entry.
func (v *Validator) EnvKeys(field string, env map[string]string) *Validator {
	for k := range env {
		v.Check(k != "" && !strings.ContainsAny(k, "=\x00"), field, fmt.Sprintf("invalid variable name %q", k))
	}
	return v
}

// OneOf fails when a non-empty value is not in allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	return v.Check(value == "" || slices.Contains(allowed, value), field,
		"must be one of: "+strings.Join(allowed, ", "))
}

// Required validates a single required field.
func Required(field, value string) error {
	return New().Required(field, value).Err()
}
