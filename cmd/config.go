package cmd

import (
	"fmt"
	"os"

	"github.com/grovetools/gerrit-hooks/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config-layers",
		Short: "Display the layered configuration for the current directory",
		Long: `Shows how the final configuration is built by merging layers:
1. Global config (~/.config/gerrit-hooks/gerrit-hooks.yml)
2. Project config (gerrit-hooks.yml, found by walking up from the current directory)
This is useful for debugging configuration issues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}

			layered, err := config.LoadLayered(cwd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printLayer := func(title string, path string, cfg *config.Config) {
				if cfg == nil {
					return
				}
				fmt.Fprintf(out, "--- # %s\n", title)
				if path != "" {
					fmt.Fprintf(out, "# Source: %s\n", path)
				}
				data, _ := yaml.Marshal(cfg)
				fmt.Fprintln(out, string(data))
			}

			printLayer("DEFAULT CONFIG", "", layered.Default)
			printLayer("GLOBAL CONFIG", layered.FilePaths[config.SourceGlobal], layered.Global)
			printLayer("PROJECT CONFIG", layered.FilePaths[config.SourceProject], layered.Project)
			printLayer("FINAL MERGED CONFIG", "", layered.Final)

			return nil
		},
	}
	return cmd
}
