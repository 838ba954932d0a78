package cmd

import (
	"errors"
	"fmt"
	"strings"
)

// SplatSuffix marks the trailing argument that collects all remaining tokens.
const SplatSuffix = "..."

var (
	ErrEmptyArgName  = errors.New("argument name is empty")
	ErrDuplicateArg  = errors.New("duplicate argument name")
	ErrMultipleSplat = errors.New("more than one splat argument")
	ErrSplatNotLast  = errors.New("splat argument must be last")
)

// ArgKind tells the binder how many tokens an argument takes and what it
// falls back to.
type ArgKind int

const (
	// KindSimple binds exactly one token and is absent when none is left.
	KindSimple ArgKind = iota
	// KindDefault binds one token and falls back to its default value.
	KindDefault
	// KindSplat binds every remaining token.
	KindSplat
)

func (k ArgKind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindDefault:
		return "default"
	case KindSplat:
		return "splat"
	default:
		return fmt.Sprintf("ArgKind(%d)", int(k))
	}
}

// Arg describes one positional argument of a command.
type Arg struct {
	Name    string
	Kind    ArgKind
	Default string
}

// Simple declares a required single-token argument.
func Simple(name string) Arg {
	return Arg{Name: name, Kind: KindSimple}
}

// Default declares a single-token argument with a fallback value.
func Default(name, value string) Arg {
	return Arg{Name: name, Kind: KindDefault, Default: value}
}

// Splat declares the trailing argument that collects the rest of the text.
func Splat(name string) Arg {
	return Arg{Name: name, Kind: KindSplat}
}

// ParseArg reads the string form of an argument declaration:
//
//	name          simple
//	name:default  with default
//	name...       splat
func ParseArg(decl string) Arg {
	decl = strings.TrimSpace(decl)
	if name, ok := strings.CutSuffix(decl, SplatSuffix); ok {
		return Splat(name)
	}
	if name, value, ok := strings.Cut(decl, ":"); ok {
		return Default(name, value)
	}
	return Simple(decl)
}

// String renders the argument the way help shows it.
func (a Arg) String() string {
	switch a.Kind {
	case KindDefault:
		return a.Name + ":" + a.Default
	case KindSplat:
		return a.Name + SplatSuffix
	default:
		return a.Name
	}
}

// Spec is a validated, ordered list of arguments. The zero value is the spec
// of a command without arguments.
type Spec struct {
	args []Arg
}

// Compile validates args and returns the normalized spec. A splat may appear
// once and only in last position; names must be unique and non-empty.
func Compile(args ...Arg) (Spec, error) {
	seen := make(map[string]bool, len(args))
	var splats []string
	for i, a := range args {
		if a.Name == "" {
			return Spec{}, fmt.Errorf("argument %d: %w", i, ErrEmptyArgName)
		}
		if seen[a.Name] {
			return Spec{}, fmt.Errorf("argument %q: %w", a.Name, ErrDuplicateArg)
		}
		seen[a.Name] = true
		if a.Kind == KindSplat {
			splats = append(splats, a.Name)
		}
	}
	if len(splats) > 1 {
		return Spec{}, fmt.Errorf("arguments %s: %w", strings.Join(splats, ", "), ErrMultipleSplat)
	}
	if len(splats) == 1 && args[len(args)-1].Kind != KindSplat {
		return Spec{}, fmt.Errorf("argument %q: %w", splats[0], ErrSplatNotLast)
	}

	out := make([]Arg, len(args))
	copy(out, args)
	return Spec{args: out}, nil
}

// ParseSpec compiles a spec from string declarations (see ParseArg).
func ParseSpec(decls ...string) (Spec, error) {
	args := make([]Arg, 0, len(decls))
	for _, d := range decls {
		args = append(args, ParseArg(d))
	}
	return Compile(args...)
}

// MustCompile is like Compile but panics on a malformed spec. Intended for
// package-level command tables.
func MustCompile(args ...Arg) Spec {
	s, err := Compile(args...)
	if err != nil {
		panic(err)
	}
	return s
}

// Args returns a copy of the arguments in declaration order.
func (s Spec) Args() []Arg {
	out := make([]Arg, len(s.args))
	copy(out, s.args)
	return out
}

// Len returns the number of declared arguments.
func (s Spec) Len() int { return len(s.args) }

// String renders the argument summary used in help, e.g. "arg1 arg2 arg3:3".
func (s Spec) String() string {
	parts := make([]string, len(s.args))
	for i, a := range s.args {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}
