package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"slices"

	"github.com/grovetools/gerrit-hooks/config"
	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/flags"
	"github.com/grovetools/gerrit-hooks/parser"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// hookInvocation is a command line of the form
// "<command> [own flags] <hook-or-path> [hook flags]".
type hookInvocation struct {
	token string
	args  []string
	help  bool
}

// splitHookArgs parses the command's own flags up to the hook token and
// leaves everything after it for the hook parser. Commands using it set
// DisableFlagParsing so cobra does not reject the hook flags.
func splitHookArgs(cmd *cobra.Command, args []string) (hookInvocation, error) {
	// InheritedFlags merges the root's persistent flags into cmd.Flags().
	cmd.InheritedFlags()
	fs := cmd.Flags()
	fs.SetInterspersed(false)
	if err := fs.Parse(args); err != nil {
		return hookInvocation{}, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid flags")
	}

	if help, _ := fs.GetBool("help"); help {
		return hookInvocation{help: true}, nil
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return hookInvocation{}, errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s requires a hook name or hook script path", cmd.Name()))
	}
	return hookInvocation{token: rest[0], args: rest[1:]}, nil
}

// newRegistry returns the default registry extended with the configured
// approval categories and any given on the command line.
func newRegistry(cfg *config.Config, labels []string) (*flags.Registry, error) {
	reg := flags.NewRegistry()
	if err := cfg.ApplyTo(reg); err != nil {
		return nil, err
	}
	for _, label := range labels {
		if slices.Contains(reg.ApprovalCategories(), label) {
			continue
		}
		if err := reg.AddApprovalCategory(label); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// isHelp reports whether a parse failed because the hook arguments asked for help.
func isHelp(err error) bool {
	return stderrors.Is(err, pflag.ErrHelp)
}

// printHookUsage writes the flags accepted by the hook named by token.
func printHookUsage(w io.Writer, reg *flags.Registry, cmdPath, token string) error {
	h, err := parser.Resolve(token)
	if err != nil {
		return err
	}
	p, err := parser.Build(reg, h)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Usage: %s %s [flags]\n\nFlags:\n%s", cmdPath, h.External(), p.Usage())
	return nil
}
