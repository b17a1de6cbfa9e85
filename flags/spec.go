package flags

import (
	"fmt"
	"slices"
	"strings"
)

// Kind is the parsing behavior class of a flag.
type Kind int

const (
	// Ordinary flags take exactly one value; the last occurrence wins.
	Ordinary Kind = iota
	// Repeatable flags may appear many times and accumulate their values in order.
	Repeatable
	// Choice flags take one value from a closed set.
	Choice
	// OptionalValue flags may be omitted or given without a value.
	OptionalValue
)

func (k Kind) String() string {
	switch k {
	case Ordinary:
		return "ordinary"
	case Repeatable:
		return "repeatable"
	case Choice:
		return "choice"
	case OptionalValue:
		return "optional-value"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Spec describes a single command-line flag accepted by a hook.
type Spec struct {
	// Name is the full flag, including the leading dashes (e.g. "--change").
	Name string
	// Placeholder is the human-readable value description (e.g. "<change id>").
	Placeholder string
	Kind        Kind
	// Choices is the accepted value set of a Choice flag.
	Choices []string
	// Default is the value of an OptionalValue flag when it is omitted.
	Default string
	// Const is the value of an OptionalValue flag given without a value.
	Const string
}

// Key is the flag name without its leading dashes, used as the parsed result key.
func (s Spec) Key() string {
	return strings.TrimLeft(s.Name, "-")
}

// EnvName is the environment variable a parsed value is exported under:
// GERRIT_ followed by the key upper-cased, with '-' and '.' as '_'.
func (s Spec) EnvName() string {
	return EnvName(s.Key())
}

// EnvName maps a parsed result key to its environment variable name.
func EnvName(key string) string {
	return "GERRIT_" + strings.ToUpper(envReplacer.Replace(key))
}

var envReplacer = strings.NewReplacer("-", "_", ".", "_")

// Allows reports whether v is an accepted value. Only Choice flags restrict values.
func (s Spec) Allows(v string) bool {
	if s.Kind != Choice {
		return true
	}
	return slices.Contains(s.Choices, v)
}

// Usage renders the flag the way Gerrit documents it: "--flag <placeholder>".
func (s Spec) Usage() string {
	return s.Name + " " + s.Placeholder
}

func (s Spec) clone() Spec {
	s.Choices = slices.Clone(s.Choices)
	return s
}

func flag(name, placeholder string) Spec {
	return Spec{Name: name, Placeholder: placeholder, Kind: Ordinary}
}

func repeatable(name, placeholder string) Spec {
	return Spec{Name: name, Placeholder: placeholder, Kind: Repeatable}
}

func choice(name, placeholder string, choices ...string) Spec {
	return Spec{Name: name, Placeholder: placeholder, Kind: Choice, Choices: choices}
}

func optional(name, placeholder, def, constant string) Spec {
	return Spec{Name: name, Placeholder: placeholder, Kind: OptionalValue, Default: def, Const: constant}
}
