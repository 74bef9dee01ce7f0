package util

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// maxSeconds is the largest whole number of seconds a time.Duration holds.
const maxSeconds = math.MaxInt64 / int64(time.Second)

// ToDuration converts loosely typed timeout values. Plain numbers of any
// integer or float kind are seconds; strings are tried as Go durations
// ("1m30s") and then as seconds.
func ToDuration(v any) (time.Duration, error) {
	switch t := v.(type) {
	case time.Duration:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if d, err := time.ParseDuration(s); err == nil {
			return d, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", t)
		}
		return secondsToDuration(f)
	case nil:
		return 0, fmt.Errorf("unsupported duration type %T", v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n > maxSeconds || n < -maxSeconds {
			return 0, fmt.Errorf("duration of %d seconds is out of range", n)
		}
		return time.Duration(n) * time.Second, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if n > uint64(maxSeconds) {
			return 0, fmt.Errorf("duration of %d seconds is out of range", n)
		}
		return time.Duration(n) * time.Second, nil
	case reflect.Float32, reflect.Float64:
		return secondsToDuration(rv.Float())
	default:
		return 0, fmt.Errorf("unsupported duration type %T", v)
	}
}

func secondsToDuration(s float64) (time.Duration, error) {
	if math.IsNaN(s) || math.IsInf(s, 0) || math.Abs(s) > float64(maxSeconds) {
		return 0, fmt.Errorf("duration of %v seconds is out of range", s)
	}
	return time.Duration(s * float64(time.Second)), nil
}

// ToStringMap converts an environment-like value to map[string]string.
// Accepted forms are map[string]string, map[string]any and KEY=VALUE slices.
func ToStringMap(v any) (map[string]string, error) {
	switch t := v.(type) {
	case map[string]string:
		return CloneMap(t), nil
	case map[string]any:
		out := make(map[string]string, len(t))
		for k, val := range t {
			out[k] = fmt.Sprint(val)
		}
		return out, nil
	case []string:
		return ParseKeyValues(t)
	default:
		return nil, fmt.Errorf("unsupported mapping type %T", v)
	}
}

// ParseKeyValues parses KEY=VALUE pairs. Values are trimmed and a single
// layer of matching quotes is removed.
func ParseKeyValues(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, val, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid KEY=VALUE pair %q", p)
		}
		out[k] = unquote(val)
	}
	return out, nil
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return s
}
