package cmdline

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Entry is one element of a command line: a Group or a nested command.
type Entry interface {
	// AppendArgv appends the entry's tokens to dst and returns the result.
	AppendArgv(dst []string) []string
}

// Group is one layer of arguments supplied in a single call: positional
// tokens and named parameters. A Group is immutable once built.
type Group struct {
	positional []string
	named      Params
}

// NewGroup copies positional and named into a new Group.
func NewGroup(positional []string, named Params) Group {
	return Group{
		positional: append([]string(nil), positional...),
		named:      named.Clone(),
	}
}

// Positional returns a copy of the group's positional tokens.
func (g Group) Positional() []string {
	return append([]string(nil), g.positional...)
}

// Named returns a copy of the group's named parameters.
func (g Group) Named() Params {
	return g.named.Clone()
}

// IsEmpty reports whether the group renders no tokens at all.
func (g Group) IsEmpty() bool {
	return len(g.positional) == 0 && len(g.named) == 0
}

// Extend returns a new Group with positional appended and named merged over
// the existing parameters.
func (g Group) Extend(positional []string, named Params) Group {
	out := NewGroup(g.positional, g.named)
	out.positional = append(out.positional, positional...)
	out.named.Merge(named)
	return out
}

// AppendArgv renders named parameters first, then positional tokens.
func (g Group) AppendArgv(dst []string) []string {
	for _, kv := range g.named {
		value, ok := renderValue(kv.Value)
		if !ok {
			continue
		}
		dst = append(dst, ResolveParameterName(kv.Key))
		if value != nil {
			dst = append(dst, *value)
		}
	}
	return append(dst, g.positional...)
}

// Unit is a command name plus its ordered entries.
type Unit struct {
	Command string
	Entries []Entry
}

// NewUnit builds a Unit from a command name and entries.
func NewUnit(command string, entries ...Entry) Unit {
	return Unit{Command: command, Entries: entries}
}

// Argv resolves the unit's argument vector.
func (u Unit) Argv() []string {
	return Build(u.Command, u.Entries)
}

// AppendArgv appends the unit's full argument vector, command name included.
func (u Unit) AppendArgv(dst []string) []string {
	return appendCommand(dst, u.Command, u.Entries)
}

// Build returns the argument vector for command followed by entries.
// The result always begins with command.
func Build(command string, entries []Entry) []string {
	return appendCommand(make([]string, 0, 1+2*len(entries)), command, entries)
}

func appendCommand(dst []string, command string, entries []Entry) []string {
	dst = append(dst, command)
	for _, e := range entries {
		if e == nil {
			continue
		}
		dst = e.AppendArgv(dst)
	}
	return dst
}

// ResolveParameterName turns a parameter key into an option token.
//
//	"a"     -> "-a"
//	"all"   -> "--all"
//	"_ab"   -> "-ab"
//	"__a"   -> "--a"
func ResolveParameterName(key string) string {
	switch {
	case strings.HasPrefix(key, "__"):
		return "--" + key[2:]
	case strings.HasPrefix(key, "_"):
		return "-" + key[1:]
	case utf8.RuneCountInString(key) == 1:
		return "-" + key
	default:
		return "--" + key
	}
}

// renderValue reports whether a parameter is emitted and, if so, the value
// token that follows it. A nil token means a bare flag.
func renderValue(v any) (*string, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case bool:
		return nil, t
	case string:
		return &t, true
	default:
		s := fmt.Sprint(t)
		return &s, true
	}
}
