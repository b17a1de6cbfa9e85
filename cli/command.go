package cli

import (
	"fmt"
	"os"

	"github.com/grovetools/gerrit-hooks/config"
	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommandOptions holds the options shared by every gerrit-hooks command.
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
}

// NewStandardCommand creates a command with the standard persistent flags.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to gerrit-hooks.yml config file")

	return cmd
}

// GetOptions extracts the standard options from a command.
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
	}
}

// LoadConfig loads the file named by --config, or discovers one from the
// working directory. Without any config file the defaults are returned.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := GetOptions(cmd)
	if opts.ConfigFile != "" {
		return config.Load(opts.ConfigFile)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get current directory")
	}
	cfg, err := config.LoadFrom(cwd)
	if errors.Is(err, errors.ErrCodeConfigNotFound) {
		return config.Default(), nil
	}
	return cfg, err
}

// GetLogger builds the logger for component from the logging section of
// cfg. --verbose raises the level to debug.
func GetLogger(cmd *cobra.Command, component string, cfg *config.Config) *logrus.Entry {
	var logCfg logging.Config
	if cfg != nil {
		if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
			logrus.Warnf("Failed to parse 'logging' config: %v", err)
		}
	}
	if GetOptions(cmd).Verbose {
		logCfg.Level = "debug"
	}
	return logging.New(component, logCfg, cmd.ErrOrStderr())
}

// UsageError marks err as a command-line usage mistake.
func UsageError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.New(errors.ErrCodeInvalidInput, err.Error())
}

// EnforceUsageErrors makes flag parsing, argument validation and unknown
// subcommands under root return INVALID_INPUT errors. root must not set
// Args or Run itself: it gets a RunE that prints help.
func EnforceUsageErrors(root *cobra.Command) {
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return UsageError(err)
	})
	root.Args = func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return errors.New(errors.ErrCodeInvalidInput,
				fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath())).
				WithDetail("command", args[0])
		}
		return nil
	}
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}
	wrapArgs(root)
}

func wrapArgs(cmd *cobra.Command) {
	for _, c := range cmd.Commands() {
		if validate := c.Args; validate != nil {
			c.Args = func(cmd *cobra.Command, args []string) error {
				return UsageError(validate(cmd, args))
			}
		}
		wrapArgs(c)
	}
}
