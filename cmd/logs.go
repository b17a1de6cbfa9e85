package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grovetools/gerrit-hooks/cli"
	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/logging"
	"github.com/grovetools/gerrit-hooks/util/pathutil"
	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	var (
		follow bool
		lines  int
	)

	cmd := &cobra.Command{
		Use:   "logs [component]",
		Short: "Show the gerrit-hooks log file",
		Long: `Prints the log file of a component; "run" is the component that logs hook
invocations and is the default.

Examples:
  # Follow hook invocations as Gerrit runs them
  gerrit-hooks logs -f

  # Show the last 50 lines
  gerrit-hooks logs --tail 50`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			component := "run"
			if len(args) == 1 {
				component = args[0]
			}

			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			var logCfg logging.Config
			if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
				return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse 'logging' config")
			}
			path, err := logPath(component, logCfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !follow {
				return printLastLines(path, lines, out)
			}
			whence := io.SeekStart
			if lines >= 0 {
				if _, err := os.Stat(path); err == nil {
					if err := printLastLines(path, lines, out); err != nil {
						return err
					}
				}
				whence = io.SeekEnd
			}
			return followLog(cmd.Context(), path, out, whence)
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVar(&lines, "tail", -1, "Number of lines to show from the end of the log (default: all)")
	return cmd
}

func logPath(component string, logCfg logging.Config) (string, error) {
	if logCfg.File.Path == "" {
		return logging.DefaultLogPath(component), nil
	}
	path, err := pathutil.Expand(logCfg.File.Path)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid log file path").
			WithDetail("path", logCfg.File.Path)
	}
	return path, nil
}

// printLastLines writes the last n lines of path, or all of them when n < 0.
func printLastLines(path string, n int, w io.Writer) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("no log file at %s", path)).
			WithDetail("path", path)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePermissionDenied, "failed to read log file").
			WithDetail("path", path)
	}

	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	all := strings.Split(text, "\n")
	if n >= 0 && n < len(all) {
		all = all[len(all)-n:]
	}
	for _, line := range all {
		fmt.Fprintln(w, line)
	}
	return nil
}

// followLog streams lines appended to path until ctx is done.
func followLog(ctx context.Context, path string, w io.Writer, whence int) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Poll:     true,
		Location: &tail.SeekInfo{Offset: 0, Whence: whence},
		Logger:   tail.DiscardingLogger,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePermissionDenied, "failed to follow log file").
			WithDetail("path", path)
	}
	defer t.Cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = t.Stop()
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				continue
			}
			fmt.Fprintln(w, line.Text)
		}
	}
}
