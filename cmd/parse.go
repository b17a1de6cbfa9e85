package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/gerrit-hooks/cli"
	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/parser"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewParseCmd() *cobra.Command {
	var (
		format string
		labels []string
	)

	cmd := &cobra.Command{
		Use:   "parse [flags] <hook-or-path> [hook flags]",
		Short: "Parse hook arguments and print the result",
		Long: `Parses the arguments Gerrit passes to a hook and prints the parsed options.
The hook may be named in either form (patchset-created or PATCHSET_CREATED)
or by the path of a hook script, whose file name without extension names
the hook. Flags for this command must come before the hook name.

Examples:
  gerrit-hooks parse patchset-created --change I0123 --kind REWORK --topic
  gerrit-hooks parse -o yaml /srv/gerrit/hooks/comment-added.py --Code-Review 2
  gerrit-hooks parse --label Library-Compliance comment-added --Library-Compliance 1`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := splitHookArgs(cmd, args)
			if err != nil {
				return err
			}
			if inv.help {
				return cmd.Help()
			}
			if format != "json" && format != "yaml" {
				return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unsupported format %q: use json or yaml", format))
			}

			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			reg, err := newRegistry(cfg, labels)
			if err != nil {
				return err
			}

			opts, err := parser.ParseArgs(reg, inv.token, inv.args)
			if isHelp(err) {
				return printHookUsage(cmd.OutOrStdout(), reg, cmd.CommandPath(), inv.token)
			}
			if err != nil {
				return err
			}

			var data []byte
			if format == "yaml" {
				data, err = yaml.Marshal(opts)
			} else {
				data, err = json.MarshalIndent(opts, "", "  ")
				data = append(data, '\n')
			}
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to render options")
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", "json", "Output format: json or yaml")
	cmd.Flags().StringArrayVar(&labels, "label", nil, "Register an extra approval category on comment-added (repeatable)")
	return cmd
}
