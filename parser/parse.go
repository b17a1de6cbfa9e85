package parser

import (
	"os"

	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/flags"
	"github.com/grovetools/gerrit-hooks/hooks"
)

// Resolve turns a hook-type token into a hook. The token may be a hook
// name in either form or a path to a hook script, whose file name without
// extension names the hook.
func Resolve(token string) (hooks.Hook, error) {
	name := hooks.NameFromToken(token)
	normalized := hooks.Normalize(name)
	if !hooks.Contains(normalized) {
		return "", errors.UnknownHookType(name, normalized)
	}
	return hooks.Hook(normalized), nil
}

// ParseArgs resolves token, builds a parser for it and parses args.
func ParseArgs(reg *flags.Registry, token string, args []string) (*Options, error) {
	h, err := Resolve(token)
	if err != nil {
		return nil, err
	}
	p, err := Build(reg, h)
	if err != nil {
		return nil, err
	}
	return p.Parse(args)
}

// ParseOptions parses the current process arguments for the hook named by token.
func ParseOptions(reg *flags.Registry, token string) (*Options, error) {
	return ParseArgs(reg, token, processArgs())
}

// ParseProcess parses the current process arguments for the hook named by
// the executable itself, which is how Gerrit identifies a hook script.
func ParseProcess(reg *flags.Registry) (*Options, error) {
	token := ""
	if len(os.Args) > 0 {
		token = os.Args[0]
	}
	return ParseOptions(reg, token)
}

func processArgs() []string {
	if len(os.Args) < 2 {
		return nil
	}
	return os.Args[1:]
}
