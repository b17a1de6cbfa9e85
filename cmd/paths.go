package cmd

import (
	"fmt"
	"os"

	"github.com/grovetools/gerrit-hooks/cli"
	"github.com/grovetools/gerrit-hooks/config"
	"github.com/grovetools/gerrit-hooks/logging"
	"github.com/grovetools/gerrit-hooks/util/pathutil"
	"github.com/spf13/cobra"
)

// PathsOutput lists the files gerrit-hooks reads and writes.
type PathsOutput struct {
	ConfigFile   string `json:"config_file"`
	GlobalConfig string `json:"global_config"`
	LogFile      string `json:"log_file"`
	HooksDir     string `json:"hooks_dir"`
}

func NewPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the paths used by gerrit-hooks",
		Long: `Print the paths used by gerrit-hooks as JSON:
- config_file: the configuration file found from the current directory
- global_config: the global configuration file
- log_file: where "run" writes its log
- hooks_dir: the Gerrit hooks directory from the configuration`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			var output PathsOutput
			output.ConfigFile = cli.GetOptions(cmd).ConfigFile
			if output.ConfigFile == "" {
				if cwd, err := os.Getwd(); err == nil {
					output.ConfigFile, _ = config.FindConfigFile(cwd)
				}
			}
			output.GlobalConfig = config.GlobalConfigPath()

			var logCfg logging.Config
			if err := cfg.UnmarshalExtension("logging", &logCfg); err == nil {
				output.LogFile, _ = logPath("run", logCfg)
			}
			if cfg.HooksDir != "" {
				output.HooksDir, _ = pathutil.Expand(cfg.HooksDir)
			}

			if err := writeJSON(cmd.OutOrStdout(), output); err != nil {
				return fmt.Errorf("failed to marshal paths to JSON: %w", err)
			}
			return nil
		},
	}

	return cmd
}
