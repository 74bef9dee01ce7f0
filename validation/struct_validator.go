package validation

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/shellwrap/errors"
)

// inline names embedded structs decoded with ",squash" or ",inline". Their
// fields sit at the parent's level in the config, so the segment is dropped
// from error paths.
const inline = "~"

var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(configKey)
	return v
})

// configKey names a field the way the config file does.
func configKey(f reflect.StructField) string {
	for _, tag := range []string{"mapstructure", "yaml", "json"} {
		name, opts, _ := strings.Cut(f.Tag.Get(tag), ",")
		switch {
		case name == "-":
			return toSnakeCase(f.Name)
		case name != "":
			return name
		case f.Anonymous && (opts == "squash" || opts == "inline"):
			return inline
		}
	}
	return toSnakeCase(f.Name)
}

// Validate checks s against its `validate` struct tags and reports failures
// as an INVALID_INPUT AppError keyed by config path, e.g. "exec.timeout".
func Validate(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed").WithCause(err)
	}

	v := New()
	for _, e := range fieldErrs {
		v.AddError(fieldPath(e.Namespace()), describe(e))
	}
	return v.Err()
}

// fieldPath turns "appConfig.~.logging.level" into "logging.level".
func fieldPath(namespace string) string {
	segs := strings.Split(namespace, ".")
	if len(segs) > 1 {
		segs = segs[1:]
	}
	kept := segs[:0]
	for _, s := range segs {
		if s != inline {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ".")
}

var tagMessages = map[string]string{
	"required": "is required",
	"min":      "must be at least ",
	"gte":      "must be at least ",
	"max":      "must be at most ",
	"lte":      "must be at most ",
	"gt":       "must be greater than ",
	"oneof":    "must be one of: ",
	"dir":      "must be an existing directory",
}

func describe(e validator.FieldError) string {
	msg, ok := tagMessages[e.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.HasSuffix(msg, " ") {
		return msg + e.Param()
	}
	return msg
}

// toSnakeCase converts a Go field name: GracePeriod -> grace_period.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
