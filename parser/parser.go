// Package parser builds argument parsers for Gerrit hooks and parses hook
// invocations into Options.
package parser

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/flags"
	"github.com/grovetools/gerrit-hooks/hooks"
	"github.com/spf13/pflag"
)

// Parser parses the arguments of one hook type. It holds the flag list as
// it was when Build ran.
type Parser struct {
	hook      hooks.Hook
	specs     []flags.Spec
	approvals []string
}

// Build resolves h's flags from reg and returns a parser for them.
// Every flag is optional.
func Build(reg *flags.Registry, h hooks.Hook) (*Parser, error) {
	specs, err := reg.Lookup(h)
	if err != nil {
		return nil, err
	}
	return &Parser{
		hook:      h,
		specs:     specs,
		approvals: reg.ApprovalCategories(),
	}, nil
}

// Hook returns the hook this parser was built for.
func (p *Parser) Hook() hooks.Hook {
	return p.hook
}

// Specs returns the flags the parser recognizes, in definition order.
func (p *Parser) Specs() []flags.Spec {
	return slices.Clone(p.specs)
}

// Recognizes reports whether flag, with or without leading dashes, is accepted.
func (p *Parser) Recognizes(flag string) bool {
	key := strings.TrimLeft(flag, "-")
	return slices.ContainsFunc(p.specs, func(s flags.Spec) bool { return s.Key() == key })
}

// Usage renders the flag help for this hook.
func (p *Parser) Usage() string {
	fs, _ := p.flagSet()
	return fs.FlagUsages()
}

type binding struct {
	spec  flags.Spec
	value *string
	list  *[]string
}

// flagSet creates a fresh FlagSet, so a Parser can be used any number of times.
func (p *Parser) flagSet() (*pflag.FlagSet, []binding) {
	fs := pflag.NewFlagSet(p.hook.External(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	bindings := make([]binding, 0, len(p.specs))
	for _, s := range p.specs {
		b := binding{spec: s}
		help := s.Placeholder
		switch s.Kind {
		case flags.Repeatable:
			b.list = fs.StringArray(s.Key(), nil, help+" (repeatable)")
		case flags.Choice:
			b.value = new(string)
			fs.Var(&choiceValue{value: b.value, choices: s.Choices}, s.Key(),
				fmt.Sprintf("%s {%s}", help, strings.Join(s.Choices, ",")))
		case flags.OptionalValue:
			b.value = fs.String(s.Key(), s.Default, help)
		default:
			b.value = fs.String(s.Key(), "", help)
		}
		bindings = append(bindings, b)
	}
	return fs, bindings
}

// Parse parses args, which must not include the program name.
func (p *Parser) Parse(args []string) (*Options, error) {
	normalized, err := normalizeArgs(p.specs, args)
	if err != nil {
		return nil, errors.InvalidArguments(p.hook.External(), err)
	}

	fs, bindings := p.flagSet()
	if err := fs.Parse(normalized); err != nil {
		return nil, errors.InvalidArguments(p.hook.External(), err)
	}
	if fs.NArg() > 0 {
		return nil, errors.InvalidArguments(p.hook.External(),
			fmt.Errorf("unrecognized arguments: %s", strings.Join(fs.Args(), " ")))
	}

	opts := newOptions(p.hook, p.specs, p.approvals)
	for _, b := range bindings {
		key := b.spec.Key()
		switch {
		case b.spec.Kind == flags.OptionalValue:
			opts.values[key] = *b.value
		case !fs.Changed(key):
			continue
		case b.list != nil:
			opts.lists[key] = slices.Clone(*b.list)
		default:
			opts.values[key] = *b.value
		}
	}
	return opts, nil
}

// choiceValue is a pflag.Value restricted to a closed set of strings.
type choiceValue struct {
	value   *string
	choices []string
}

func (c *choiceValue) Set(v string) error {
	if !slices.Contains(c.choices, v) {
		return fmt.Errorf("invalid choice: %q (choose from %s)", v, strings.Join(c.choices, ", "))
	}
	*c.value = v
	return nil
}

func (c *choiceValue) String() string {
	if c.value == nil {
		return ""
	}
	return *c.value
}

func (c *choiceValue) Type() string {
	return "string"
}
