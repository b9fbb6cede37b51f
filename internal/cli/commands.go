package cli

import (
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/pkgman/internal/version"
	"github.com/arthur-debert/pkgman/pkg/config"
	"github.com/arthur-debert/pkgman/pkg/errors"
	"github.com/arthur-debert/pkgman/pkg/filesystem"
	"github.com/arthur-debert/pkgman/pkg/paths"
	"github.com/arthur-debert/pkgman/pkg/types"
	"github.com/arthur-debert/pkgman/pkg/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{fs: filesystem.NewOS()})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "pkgman",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipSetup(cmd) {
				a.paths = paths.New()
				return nil
			}
			if err := a.setup(cmd.ErrOrStderr()); err != nil {
				return err
			}
			a.logger.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&a.flags.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.BoolVar(&a.flags.dryRun, "dry-run", false, MsgFlagDryRun)
	flags.StringVar(&a.flags.configFile, "config", "", MsgFlagConfig)
	flags.StringVar(&a.flags.backend, "backend", "", MsgFlagBackend)
	flags.StringVar(&a.flags.packagesFile, "packages", "", MsgFlagPackages)
	flags.StringVar(&a.flags.ignoreFile, "ignore", "", MsgFlagIgnore)

	rootCmd.AddCommand(newInstallCmd(a))
	rootCmd.AddCommand(newPlanCmd(a))
	rootCmd.AddCommand(newGroupsCmd(a))
	rootCmd.AddCommand(newIgnoreCmd(a))
	rootCmd.AddCommand(newUpdateCmd(a))
	rootCmd.AddCommand(newCleanCmd(a))
	rootCmd.AddCommand(newOrphansCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

// skipSetup reports whether cmd runs without configuration
func skipSetup(cmd *cobra.Command) bool {
	return cmd.Annotations["setup"] == "none"
}

var noSetup = map[string]string{"setup": "none"}

func newInstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "install [groups...]",
		Short: MsgInstallShort,
		Long: `Install builds a plan from the package-group file and runs it: one
installer invocation per group for the packages that are not installed or
ignored yet, then the group's commands.

If no groups are specified, every group in the file is installed. The first
failure stops the run; nothing already installed is rolled back.`,
		Example: `  # Install every group
  pkgman install

  # Install specific groups
  pkgman install base fonts

  # Preview with the paru backend
  pkgman install --backend paru --dry-run`,
		ValidArgsFunction: a.completeGroups,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := a.installer(cmd)
			if err != nil {
				return err
			}

			plan, err := a.plan(cmd, inst, args)
			if err != nil {
				return err
			}

			r := ui.NewRenderer(ui.FormatAuto, cmd.OutOrStdout())
			if plan.IsEmpty() {
				return r.RenderMessage(MsgNothingToInstall)
			}

			a.logger.Info().
				Strs("groups", args).
				Strs("packages", plan.Packages()).
				Bool("dry_run", a.flags.dryRun).
				Msg("Starting install")

			if a.flags.dryRun {
				if err := r.RenderPlan(plan); err != nil {
					return err
				}
			}

			results, execErr := inst.Execute(cmd.Context(), plan)
			if err := r.RenderResults(results); err != nil {
				return err
			}
			if a.flags.dryRun {
				if err := r.RenderMessage(MsgDryRunNotice); err != nil {
					return err
				}
			}
			return execErr
		},
	}
}

func newPlanCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:               "plan [groups...]",
		Short:             MsgPlanShort,
		Long:              `Plan prints what install would do without running anything.`,
		ValidArgsFunction: a.completeGroups,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.renderer(cmd, format)
			if err != nil {
				return err
			}
			inst, err := a.installer(cmd)
			if err != nil {
				return err
			}
			plan, err := a.plan(cmd, inst, args)
			if err != nil {
				return err
			}
			return r.RenderPlan(plan)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "auto", MsgFlagFormat)
	return cmd
}

func newGroupsCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "groups",
		Short: MsgGroupsShort,
		Long: `Groups parses the package-group file and prints the groups it defines.
With --format toml or yaml the output is a normalized copy of the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.renderer(cmd, format)
			if err != nil {
				return err
			}
			set, err := a.loadGroups()
			if err != nil {
				return err
			}
			return r.RenderGroups(set)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "auto", MsgFlagFormat)
	return cmd
}

func newIgnoreCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "ignore",
		Short: MsgIgnoreShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.renderer(cmd, format)
			if err != nil {
				return err
			}
			spec, err := a.loadIgnore()
			if err != nil {
				return err
			}
			return r.RenderIgnore(spec)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "auto", MsgFlagFormat)
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: MsgUpdateShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := a.installer(cmd)
			if err != nil {
				return err
			}
			if err := inst.Update(cmd.Context()); err != nil {
				return err
			}
			return a.done(cmd, MsgUpdated)
		},
	}
}

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: MsgCleanShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := a.installer(cmd)
			if err != nil {
				return err
			}
			if err := inst.CleanCache(cmd.Context()); err != nil {
				return err
			}
			return a.done(cmd, MsgCacheCleaned)
		},
	}
}

func newOrphansCmd(a *app) *cobra.Command {
	var listOnly bool

	cmd := &cobra.Command{
		Use:   "orphans",
		Short: MsgOrphansShort,
		Long: `Orphans removes packages that were installed as dependencies and are no
longer required by anything. Nothing runs when there are none.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := a.installer(cmd)
			if err != nil {
				return err
			}
			r := ui.NewRenderer(ui.FormatAuto, cmd.OutOrStdout())

			if listOnly {
				orphans, err := inst.Orphans(cmd.Context())
				if err != nil {
					return err
				}
				if len(orphans) == 0 {
					return r.RenderMessage(MsgNoOrphans)
				}
				return r.RenderList(MsgOrphans, orphans)
			}

			removed, err := inst.RemoveOrphans(cmd.Context())
			if err != nil {
				return err
			}
			if len(removed) == 0 {
				return r.RenderMessage(MsgNoOrphans)
			}
			if err := r.RenderList(MsgRemovedOrphans, removed); err != nil {
				return err
			}
			return a.done(cmd, "")
		},
	}
	cmd.Flags().BoolVarP(&listOnly, "list", "l", false, MsgFlagList)
	return cmd
}

// done prints msg, or the dry-run notice in dry-run mode
func (a *app) done(cmd *cobra.Command, msg string) error {
	r := ui.NewRenderer(ui.FormatAuto, cmd.OutOrStdout())
	if a.flags.dryRun {
		return r.RenderMessage(MsgDryRunNotice)
	}
	if msg == "" {
		return nil
	}
	return r.RenderMessage(msg)
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: MsgConfigShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       MsgConfigInitShort,
		Args:        cobra.NoArgs,
		Annotations: noSetup,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.flags.configFile
			if path == "" {
				path = a.paths.ConfigFile()
			}
			path = paths.ExpandHome(path)
			if err := writeConfig(a.fs, path, force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten+"\n", path)
			return err
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	cmd.AddCommand(initCmd)

	return cmd
}

// writeConfig writes the commented default configuration to path, refusing
// to replace an existing file unless force is set
func writeConfig(fsys types.FS, path string, force bool) error {
	if _, err := fsys.Stat(path); err == nil && !force {
		return errors.Newf(errors.ErrInvalidInput, "%s already exists, use --force to overwrite it", path).
			WithDetail("path", path)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", filepath.Dir(path))
	}
	if err := fsys.WriteFile(path, []byte(config.GenerateConfigContent()), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       MsgVersionShort,
		Long:        `Print detailed version information including commit hash and build date`,
		Annotations: noSetup,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "pkgman version %s\n", version.Version)
			_, _ = fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			_, _ = fmt.Fprintf(out, "Built:  %s\n", version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: MsgCompletionShort,
		Long: `To load completions:

Bash:
  $ source <(pkgman completion bash)

Zsh:
  $ pkgman completion zsh > "${fpath[1]}/_pkgman"

Fish:
  $ pkgman completion fish > ~/.config/fish/completions/pkgman.fish

PowerShell:
  PS> pkgman completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Annotations:           noSetup,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "man",
		Short:       MsgManShort,
		Args:        cobra.NoArgs,
		Annotations: noSetup,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "PKGMAN",
				Section: "1",
				Source:  "pkgman " + version.Version,
				Manual:  "pkgman manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}

// completeGroups completes group names from the package-group file
func (a *app) completeGroups(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if a.cfg == nil {
		if err := a.setup(cmd.ErrOrStderr()); err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
	}
	set, err := a.loadGroups()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return set.Names(), cobra.ShellCompDirectiveNoFileComp
}
