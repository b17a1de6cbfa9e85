package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/grovetools/gerrit-hooks/flags"
)

// normalizeArgs rewrites every recognized "--flag value" pair into
// "--flag=value" so the engine never has to guess whether the next token
// is a value. Optional-value flags given bare become "--flag=<const>".
// A value-taking flag at the end of argv, or followed by another flag,
// is an arity error.
func normalizeArgs(specs []flags.Spec, args []string) ([]string, error) {
	byName := make(map[string]flags.Spec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if !strings.HasPrefix(arg, "--") {
			out = append(out, arg)
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		spec, ok := byName[name]
		if !ok || hasValue {
			out = append(out, arg)
			continue
		}

		hasNext := i+1 < len(args) && !flagLike(byName, args[i+1])
		switch {
		case hasNext:
			out = append(out, name+"="+args[i+1])
			i++
		case spec.Kind == flags.OptionalValue:
			out = append(out, name+"="+spec.Const)
		default:
			return nil, fmt.Errorf("argument %s: expected one argument", name)
		}
	}
	return out, nil
}

var negativeNumber = regexp.MustCompile(`^-\d+$|^-\d*\.\d+$`)

// flagLike reports whether arg would be taken as an option rather than a
// value. A recognized flag, with or without "=value", is always an option.
// Otherwise negative numbers such as review scores, a lone "-" and tokens
// containing a space are values, so free text like "- duplicate" passes.
func flagLike(byName map[string]flags.Spec, arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	name, _, _ := strings.Cut(arg, "=")
	if _, ok := byName[name]; ok {
		return true
	}
	if negativeNumber.MatchString(arg) {
		return false
	}
	return !strings.Contains(arg, " ")
}
