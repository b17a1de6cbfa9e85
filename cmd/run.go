package cmd

import (
	"github.com/grovetools/gerrit-hooks/cli"
	"github.com/grovetools/gerrit-hooks/command"
	"github.com/grovetools/gerrit-hooks/handler"
	"github.com/grovetools/gerrit-hooks/parser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewRunCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run [flags] <hook> [hook flags]",
		Short: "Parse a hook invocation and run its configured handlers",
		Long: `Parses the arguments of a hook invocation and runs the handlers configured
for that hook in gerrit-hooks.yml, one after another. Each handler receives
the parsed options as GERRIT_<FLAG> environment variables and as a JSON
document on stdin. The first failing handler stops the run.

Installed hook wrappers call this command; Gerrit's arguments follow the
hook name unchanged.

Examples:
  gerrit-hooks run patchset-created --change I0123 --project demo --kind REWORK
  gerrit-hooks run --dry-run change-merged --change I0123 --newrev abc123`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := splitHookArgs(cmd, args)
			if err != nil {
				return err
			}
			if inv.help {
				return cmd.Help()
			}
			return runHook(cmd, inv, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and log the invocation without running handlers")
	return cmd
}

func runHook(cmd *cobra.Command, inv hookInvocation, dryRun bool) error {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cli.GetLogger(cmd, "run", cfg)

	reg, err := newRegistry(cfg, nil)
	if err != nil {
		return err
	}

	opts, err := parser.ParseArgs(reg, inv.token, inv.args)
	if isHelp(err) {
		return printHookUsage(cmd.OutOrStdout(), reg, cmd.CommandPath(), inv.token)
	}
	if err != nil {
		logger.WithError(err).WithField("token", inv.token).Error("Failed to parse hook arguments")
		return err
	}

	invocation := handler.NewInvocation(opts)
	handlers := cfg.HandlersFor(opts.Hook())
	log := logger.WithFields(logrus.Fields{
		"hook":       opts.Hook().External(),
		"invocation": invocation.ID,
		"handlers":   len(handlers),
	})
	log.WithField("options", opts.Map()).Info("Hook invoked")

	if dryRun {
		for _, h := range handlers {
			log.WithField("command", h.Command).WithField("args", h.Args).Info("Would run handler")
		}
		return nil
	}

	dispatcher := handler.NewDispatcher(command.NewSafeBuilder(), logger).
		WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	_, err = dispatcher.Dispatch(cmd.Context(), invocation, handlers)
	return err
}
