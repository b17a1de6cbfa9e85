package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grovetools/gerrit-hooks/cli"
	"github.com/grovetools/gerrit-hooks/flags"
	"github.com/grovetools/gerrit-hooks/parser"
	"github.com/spf13/cobra"
)

// HookInfo is one row of the list command.
type HookInfo struct {
	Name      string `json:"name"`
	Canonical string `json:"canonical"`
	Flags     int    `json:"flags"`
}

// FlagInfo is one row of the flags command.
type FlagInfo struct {
	Flag        string   `json:"flag"`
	Placeholder string   `json:"placeholder"`
	Kind        string   `json:"kind"`
	Choices     []string `json:"choices,omitempty"`
	Default     *string  `json:"default,omitempty"`
}

func NewListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the supported Gerrit hooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			reg, err := newRegistry(cfg, nil)
			if err != nil {
				return err
			}

			var infos []HookInfo
			for _, h := range reg.Hooks() {
				specs, err := reg.Lookup(h)
				if err != nil {
					return err
				}
				infos = append(infos, HookInfo{Name: h.External(), Canonical: string(h), Flags: len(specs)})
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), infos)
			}
			table := cli.NewStyledTable("HOOK", "CANONICAL", "FLAGS")
			for _, info := range infos {
				table.Row(info.Name, info.Canonical, strconv.Itoa(info.Flags))
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func NewFlagsCmd() *cobra.Command {
	var (
		jsonOutput bool
		labels     []string
	)

	cmd := &cobra.Command{
		Use:   "flags <hook-or-path>",
		Short: "Show the flags Gerrit passes to a hook",
		Long: `Shows the flags accepted for a hook, in the order Gerrit documents them.

Examples:
  gerrit-hooks flags patchset-created
  gerrit-hooks flags comment-added --label Library-Compliance`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			reg, err := newRegistry(cfg, labels)
			if err != nil {
				return err
			}
			h, err := parser.Resolve(args[0])
			if err != nil {
				return err
			}
			p, err := parser.Build(reg, h)
			if err != nil {
				return err
			}

			infos := describeFlags(p.Specs())
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), infos)
			}
			table := cli.NewStyledTable("FLAG", "VALUE", "KIND", "NOTES")
			for _, info := range infos {
				table.Row(info.Flag, info.Placeholder, info.Kind, flagNotes(info))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", cli.DefaultTheme.Title.Render(h.External()), table.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().StringArrayVar(&labels, "label", nil, "Register an extra approval category on comment-added (repeatable)")
	return cmd
}

func describeFlags(specs []flags.Spec) []FlagInfo {
	infos := make([]FlagInfo, 0, len(specs))
	for _, s := range specs {
		info := FlagInfo{
			Flag:        s.Name,
			Placeholder: s.Placeholder,
			Kind:        s.Kind.String(),
			Choices:     s.Choices,
		}
		if s.Kind == flags.OptionalValue {
			def := s.Default
			info.Default = &def
		}
		infos = append(infos, info)
	}
	return infos
}

func flagNotes(info FlagInfo) string {
	switch {
	case len(info.Choices) > 0:
		return "one of " + strings.Join(info.Choices, ", ")
	case info.Default != nil:
		return fmt.Sprintf("default %q", *info.Default)
	case info.Kind == flags.Repeatable.String():
		return "may repeat"
	}
	return ""
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
