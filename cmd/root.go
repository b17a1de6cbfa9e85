package cmd

import (
	"context"
	"io"

	"github.com/grovetools/gerrit-hooks/cli"
	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/hooks"
	"github.com/grovetools/gerrit-hooks/version"
	"github.com/spf13/cobra"
)

// Exit codes returned by Execute.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// NewRootCmd assembles the gerrit-hooks command tree.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand(
		version.Binary,
		"Parse Gerrit hook invocations and dispatch them to configured handlers",
	)
	cli.SetVersionTemplate(root, version.GetInfo())

	root.AddCommand(
		NewParseCmd(),
		NewRunCmd(),
		NewListCmd(),
		NewFlagsCmd(),
		NewInstallCmd(),
		NewUninstallCmd(),
		NewStatusCmd(),
		NewConfigCmd(),
		NewSchemaCmd(),
		NewLogsCmd(),
		NewPathsCmd(),
		cli.NewVersionCommand(),
	)
	cli.EnforceUsageErrors(root)
	cli.ApplyStyledHelpRecursive(root)
	return root
}

// Args turns the process argument list into the arguments for the root
// command. A binary invoked under a hook's name, such as a symlink in the
// Gerrit hooks directory, runs that hook.
func Args(argv []string) []string {
	if len(argv) == 0 {
		return nil
	}
	if _, ok := hooks.Lookup(hooks.NameFromToken(argv[0])); ok {
		return append([]string{"run", argv[0]}, argv[1:]...)
	}
	return argv[1:]
}

// Execute runs the command line argv and returns the process exit code.
func Execute(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(Args(argv))
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	verbose, _ := root.PersistentFlags().GetBool("verbose")
	h := cli.NewErrorHandler(verbose)
	h.Out = stderr
	h.Handle(err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch errors.GetCode(err) {
	case "":
		if err == nil {
			return ExitOK
		}
	case errors.ErrCodeInvalidArguments, errors.ErrCodeUnknownHookType, errors.ErrCodeInvalidInput:
		return ExitUsage
	}
	return ExitError
}
