package cli

import (
	"io"
	"os"

	"github.com/arthur-debert/pkgman/pkg/config"
	"github.com/arthur-debert/pkgman/pkg/errors"
	"github.com/arthur-debert/pkgman/pkg/groups"
	"github.com/arthur-debert/pkgman/pkg/ignore"
	"github.com/arthur-debert/pkgman/pkg/installer"
	"github.com/arthur-debert/pkgman/pkg/logging"
	"github.com/arthur-debert/pkgman/pkg/paths"
	"github.com/arthur-debert/pkgman/pkg/runner"
	"github.com/arthur-debert/pkgman/pkg/types"
	"github.com/arthur-debert/pkgman/pkg/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// globalFlags holds the persistent flags of the root command
type globalFlags struct {
	verbosity    int
	dryRun       bool
	configFile   string
	backend      string
	packagesFile string
	ignoreFile   string
}

// app is the state shared by every command once flags are parsed
type app struct {
	flags  globalFlags
	paths  *paths.Paths
	fs     types.FS
	cfg    *config.Config
	logger zerolog.Logger
}

// overrides maps set flags to configuration keys
func (f *globalFlags) overrides() map[string]interface{} {
	out := map[string]interface{}{}
	if f.backend != "" {
		out[config.KeyBackend] = f.backend
	}
	if f.packagesFile != "" {
		out[config.KeyPackagesFile] = f.packagesFile
	}
	if f.ignoreFile != "" {
		out[config.KeyIgnoreFile] = f.ignoreFile
	}
	return out
}

// setup loads the configuration and builds the logger. Until the
// configuration is known, diagnostics go through a bootstrap logger driven by
// the verbosity flag alone.
func (a *app) setup(stderr io.Writer) error {
	a.paths = paths.New()

	bootstrap := logging.New(logging.Options{
		Level: logging.LevelForVerbosity(a.flags.verbosity, zerolog.WarnLevel),
		Out:   stderr,
	})

	cfg, err := config.Load(config.LoadOptions{
		File:      a.flags.configFile,
		Paths:     a.paths,
		Overrides: a.flags.overrides(),
		Logger:    bootstrap,
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Validate already checked the level name
	level, _ := logging.ParseLevel(cfg.LogLevel)
	a.logger = logging.New(logging.Options{
		Level:   logging.LevelForVerbosity(a.flags.verbosity, level),
		Out:     stderr,
		LogFile: cfg.LogFile,
	})
	return nil
}

// loadGroups parses the configured package-group file
func (a *app) loadGroups() (*types.PackageGroupSet, error) {
	return groups.NewParser(a.fs, a.logger).Parse(a.cfg.PackagesFile)
}

// loadIgnore parses the configured ignore file. The default file is optional;
// one named by a flag or the configuration must exist.
func (a *app) loadIgnore() (*types.IgnoreSpec, error) {
	path := a.cfg.IgnoreFile
	if path == a.paths.IgnoreFile() {
		if _, err := a.fs.Stat(path); os.IsNotExist(err) {
			a.logger.Debug().Str("path", path).Msg("No ignore file")
			return nil, nil
		}
	}
	return ignore.NewParser(a.fs, a.logger).Parse(path)
}

// installer builds an installer for the selected backend, wired to the
// command's streams
func (a *app) installer(cmd *cobra.Command) (*installer.Installer, error) {
	backend, err := a.cfg.Backend()
	if err != nil {
		return nil, err
	}

	r := runner.New(runner.Options{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
		Logger: a.logger,
	})

	return installer.New(installer.Options{
		BackendName: a.cfg.BackendName,
		Backend:     backend,
		Runner:      r,
		DryRun:      a.flags.dryRun,
		Logger:      a.logger,
	}), nil
}

// plan loads both files, lists installed packages and builds the plan
func (a *app) plan(cmd *cobra.Command, inst *installer.Installer, selection []string) (*installer.Plan, error) {
	set, err := a.loadGroups()
	if err != nil {
		return nil, err
	}
	spec, err := a.loadIgnore()
	if err != nil {
		return nil, err
	}
	if set == nil && len(selection) == 0 {
		return &installer.Plan{RunCommands: true}, nil
	}

	installed, err := inst.InstalledPackages(cmd.Context())
	if err != nil {
		return nil, err
	}

	return installer.BuildPlan(set, spec, installed, selection)
}

func (a *app) renderer(cmd *cobra.Command, format string) (*ui.Renderer, error) {
	f, err := ui.ParseFormat(format)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid --format")
	}
	return ui.NewRenderer(f, cmd.OutOrStdout()), nil
}
