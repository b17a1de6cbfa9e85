package cmd

import (
	"fmt"
	"os"

	"github.com/grovetools/gerrit-hooks/cli"
	"github.com/grovetools/gerrit-hooks/config"
	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/hookdir"
	"github.com/grovetools/gerrit-hooks/logging"
	"github.com/grovetools/gerrit-hooks/util/pathutil"
	"github.com/spf13/cobra"
)

type installOptions struct {
	dir     string
	binary  string
	only    []string
	exclude []string
	create  bool
}

func (o *installOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.dir, "dir", "d", "", "Gerrit hooks directory (default: hooks_dir from config)")
	cmd.Flags().StringSliceVar(&o.only, "only", nil, "Only these hooks; glob patterns allowed (default: install.only from config, or all)")
	cmd.Flags().StringSliceVar(&o.exclude, "exclude", nil, "Skip these hooks; glob patterns allowed")
}

// resolve fills unset options from the config file.
func (o *installOptions) resolve(cfg *config.Config) error {
	if o.dir == "" {
		o.dir = cfg.HooksDir
	}
	if o.dir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "no hooks directory: pass --dir or set hooks_dir in gerrit-hooks.yml")
	}
	dir, err := pathutil.Expand(o.dir)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid hooks directory").WithDetail("dir", o.dir)
	}
	o.dir = dir

	if o.binary == "" {
		o.binary = cfg.Binary
	}
	if o.binary == "" {
		exe, err := os.Executable()
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "cannot locate the gerrit-hooks binary; pass --binary")
		}
		o.binary = exe
	}

	if cfg.Install != nil {
		if len(o.only) == 0 {
			o.only = cfg.Install.Only
		}
		if len(o.exclude) == 0 {
			o.exclude = cfg.Install.Exclude
		}
	}
	return nil
}

func (o *installOptions) manager(cmd *cobra.Command) (*hookdir.Manager, error) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := o.resolve(cfg); err != nil {
		return nil, err
	}
	return hookdir.NewManager(o.dir, o.binary), nil
}

func NewInstallCmd() *cobra.Command {
	opts := &installOptions{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install hook wrappers into a Gerrit hooks directory",
		Long: `Writes one executable wrapper per hook into the Gerrit site's hooks
directory. Each wrapper runs "gerrit-hooks run <hook>" with Gerrit's
arguments. An existing hook that was not written by gerrit-hooks is kept
as <hook>.pre-gerrit-hooks and restored by uninstall.

Examples:
  gerrit-hooks install --dir ~/review_site/hooks
  gerrit-hooks install --dir /srv/gerrit/hooks --only 'change-*' --exclude change-deleted`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.manager(cmd)
			if err != nil {
				return err
			}
			if err := m.EnsureDir(opts.create); err != nil {
				return err
			}
			selected, err := hookdir.Select(opts.only, opts.exclude)
			if err != nil {
				return err
			}

			results, err := m.Install(cmd.Context(), selected)
			report(cmd, results)
			return err
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.binary, "binary", "", "Binary the wrappers execute (default: binary from config, or this executable)")
	cmd.Flags().BoolVar(&opts.create, "create", false, "Create the hooks directory if it does not exist")
	return cmd
}

func NewUninstallCmd() *cobra.Command {
	opts := &installOptions{}

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove installed hook wrappers and restore replaced hooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.manager(cmd)
			if err != nil {
				return err
			}
			selected, err := hookdir.Select(opts.only, opts.exclude)
			if err != nil {
				return err
			}

			results, err := m.Uninstall(cmd.Context(), selected)
			report(cmd, results)
			return err
		},
	}

	opts.register(cmd)
	return cmd
}

func NewStatusCmd() *cobra.Command {
	opts := &installOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which hooks in a Gerrit hooks directory are managed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.manager(cmd)
			if err != nil {
				return err
			}
			if err := m.EnsureDir(false); err != nil {
				return err
			}

			table := cli.NewStyledTable("HOOK", "STATE", "BACKUP")
			for _, st := range m.Status() {
				state := "missing"
				switch {
				case st.Managed:
					state = "managed"
				case st.Exists:
					state = "unmanaged"
				}
				backup := ""
				if st.Backup {
					backup = st.Hook.External() + hookdir.BackupSuffix
				}
				table.Row(st.Hook.External(), state, backup)
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.Dir())
			fmt.Fprintln(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Gerrit hooks directory (default: hooks_dir from config)")
	return cmd
}

func report(cmd *cobra.Command, results []hookdir.Result) {
	pretty := logging.NewPrettyLoggerTo(cmd.OutOrStdout())
	changed := 0
	for _, res := range results {
		switch res.Action {
		case hookdir.Skipped:
			continue
		case hookdir.BackedUp:
			pretty.WarnPretty(fmt.Sprintf("%s: existing hook moved to %s", res.Hook.External(), res.Backup))
		default:
			pretty.Success(fmt.Sprintf("%s %s", res.Hook.External(), res.Action))
		}
		changed++
	}
	if changed == 0 {
		pretty.InfoPretty("Nothing to do")
	}
}
