package cmdline

import "strings"

// Pluck removes keys from p and returns them as a new Params, ordered as keys.
// Keys absent from p are skipped.
//
//	p := Params{{"A", 1}, {"B", 2}, {"C", 3}}
//	got := Pluck(&p, "A", "D")
//	// got == Params{{"A", 1}}, p == Params{{"B", 2}, {"C", 3}}
func Pluck(p *Params, keys ...string) Params {
	var out Params
	for _, k := range keys {
		if v, ok := p.Delete(k); ok {
			out = append(out, Param{Key: k, Value: v})
		}
	}
	return out
}

// Mapping renames parameter keys. Build one with Rename or Transform.
type Mapping struct {
	rename    map[string]string
	transform func(string) string
}

// Rename maps keys through a lookup table; unknown keys are kept.
func Rename(m map[string]string) Mapping {
	return Mapping{rename: m}
}

// Transform maps keys through fn.
func Transform(fn func(string) string) Mapping {
	return Mapping{transform: fn}
}

func (m Mapping) apply(key string) string {
	var out string
	switch {
	case m.transform != nil:
		out = m.transform(key)
	case m.rename != nil:
		out = m.rename[key]
	}
	// An empty result keeps the original key.
	if out == "" {
		return key
	}
	return out
}

// Remap returns a copy of p with every key passed through m. When two keys
// map to the same name the later value wins at the earlier position.
//
//	Remap(Params{{"A", 1}, {"B", 2}}, Rename(map[string]string{"A": "C"}))
//	// Params{{"C", 1}, {"B", 2}}
func Remap(p Params, m Mapping) Params {
	out := make(Params, 0, len(p))
	for _, kv := range p {
		out.Set(m.apply(kv.Key), kv.Value)
	}
	return out
}

// StripUnderscore removes every leading underscore from s.
func StripUnderscore(s string) string {
	return strings.TrimLeft(s, "_")
}
