package installer

import (
	"context"
	"strings"
	"time"

	"github.com/arthur-debert/pkgman/pkg/config"
	"github.com/arthur-debert/pkgman/pkg/errors"
	"github.com/arthur-debert/pkgman/pkg/logging"
	"github.com/arthur-debert/pkgman/pkg/runner"
	"github.com/rs/zerolog"
)

// Options contains configuration for the installer
type Options struct {
	BackendName string
	Backend     config.Backend
	Runner      runner.Runner
	DryRun      bool
	Logger      zerolog.Logger
}

// Result is the outcome of one plan step
type Result struct {
	Group     string        `json:"group" yaml:"group" toml:"group"`
	Success   bool          `json:"success" yaml:"success" toml:"success"`
	Skipped   bool          `json:"skipped,omitempty" yaml:"skipped,omitempty" toml:"skipped,omitempty"`
	Message   string        `json:"message,omitempty" yaml:"message,omitempty" toml:"message,omitempty"`
	Installed []string      `json:"installed,omitempty" yaml:"installed,omitempty" toml:"installed,omitempty"`
	Commands  int           `json:"commands,omitempty" yaml:"commands,omitempty" toml:"commands,omitempty"`
	Error     error         `json:"-" yaml:"-" toml:"-"`
	Duration  time.Duration `json:"duration" yaml:"duration" toml:"duration"`
}

// Installer drives one backend
type Installer struct {
	name    string
	backend config.Backend
	runner  runner.Runner
	dryRun  bool
	logger  zerolog.Logger
}

// New creates an installer. In dry-run mode the runner is wrapped so that
// only read-only queries reach the system.
func New(opts Options) *Installer {
	logger := logging.Component(opts.Logger, "installer")

	r := opts.Runner
	if r == nil {
		r = runner.New(runner.Options{Logger: opts.Logger})
	}
	if opts.DryRun {
		r = runner.NewDryRun(r, opts.Logger)
	}

	return &Installer{
		name:    opts.BackendName,
		backend: opts.Backend,
		runner:  r,
		dryRun:  opts.DryRun,
		logger:  logger,
	}
}

// InstalledPackages lists the explicitly installed packages
func (i *Installer) InstalledPackages(ctx context.Context) ([]string, error) {
	argv, err := i.command("get_installed", i.backend.GetInstalled)
	if err != nil {
		return nil, err
	}

	out, err := i.runner.Output(ctx, argv)
	if err != nil {
		return nil, err
	}

	packages := splitLines(out)
	i.logger.Debug().Int("count", len(packages)).Msg("Listed installed packages")
	return packages, nil
}

// Execute runs the plan step by step. It returns the results gathered so far
// together with the first error.
func (i *Installer) Execute(ctx context.Context, plan *Plan) ([]Result, error) {
	done := logging.LogOperationStart(i.logger, "execute")
	defer done()

	results := make([]Result, 0, len(plan.Steps))

	for _, step := range plan.Steps {
		result := i.executeStep(ctx, step, plan.RunCommands)
		results = append(results, result)

		if result.Error != nil {
			i.logger.Error().
				Err(result.Error).
				Str("group", step.Group).
				Msg("Step failed, stopping")
			return results, result.Error
		}
	}

	return results, nil
}

func (i *Installer) executeStep(ctx context.Context, step Step, runCommands bool) Result {
	start := time.Now()
	result := Result{Group: step.Group}

	finish := func() Result {
		result.Duration = time.Since(start)
		return result
	}

	switch {
	case step.Ignored:
		result.Success = true
		result.Skipped = true
		result.Message = "Group is ignored"
		return finish()
	case !step.HasWork(runCommands):
		result.Success = true
		result.Skipped = true
		result.Message = "Nothing to do"
		return finish()
	}

	i.logger.Info().
		Str("group", step.Group).
		Strs("packages", step.Install).
		Bool("dry_run", i.dryRun).
		Msg("Processing group")

	if len(step.Install) > 0 {
		argv, err := i.command("installer", i.backend.Installer, i.backend.Flags, step.Install)
		if err == nil {
			err = i.runner.Run(ctx, argv)
		}
		if err != nil {
			result.Error = err
			result.Message = "Installation failed"
			return finish()
		}
		result.Installed = step.Install
	}

	if runCommands {
		for _, command := range step.Commands {
			if err := i.runner.Shell(ctx, command); err != nil {
				result.Error = err
				result.Message = "Command failed: " + command
				return finish()
			}
			result.Commands++
		}
	} else if len(step.Commands) > 0 {
		i.logger.Info().Str("group", step.Group).Msg("Post-install commands are disabled")
	}

	result.Success = true
	if i.dryRun {
		result.Skipped = true
		result.Message = "Dry run - no changes made"
	}
	return finish()
}

// Update upgrades the system
func (i *Installer) Update(ctx context.Context) error {
	argv, err := i.command("updater", i.backend.Updater, i.backend.Flags)
	if err != nil {
		return err
	}
	i.logger.Info().Str("backend", i.name).Msg("Updating system")
	return i.runner.Run(ctx, argv)
}

// CleanCache empties the package cache
func (i *Installer) CleanCache(ctx context.Context) error {
	argv, err := i.command("clear_cache", i.backend.ClearCache)
	if err != nil {
		return err
	}
	i.logger.Info().Str("backend", i.name).Msg("Cleaning package cache")
	return i.runner.Run(ctx, argv)
}

// Orphans lists packages installed as dependencies that nothing requires
// anymore. Listing tools that exit 1 with no output, as pacman does, report
// no orphans.
func (i *Installer) Orphans(ctx context.Context) ([]string, error) {
	argv, err := i.command("list_orphans", i.backend.ListOrphans)
	if err != nil {
		return nil, err
	}

	out, err := i.runner.Output(ctx, argv)
	if err != nil {
		details := errors.GetErrorDetails(err)
		if details["exit_code"] == 1 && strings.TrimSpace(out) == "" && details["stderr"] == "" {
			return nil, nil
		}
		return nil, err
	}
	return splitLines(out), nil
}

// RemoveOrphans removes orphaned packages and returns their names. It does
// nothing when there are none.
func (i *Installer) RemoveOrphans(ctx context.Context) ([]string, error) {
	orphans, err := i.Orphans(ctx)
	if err != nil {
		return nil, err
	}
	if len(orphans) == 0 {
		i.logger.Info().Msg("No orphaned packages, nothing to do")
		return nil, nil
	}

	argv, err := i.command("remover", i.backend.Remover, orphans)
	if err != nil {
		return nil, err
	}

	i.logger.Info().Strs("packages", orphans).Msg("Removing orphaned packages")
	if err := i.runner.Run(ctx, argv); err != nil {
		return nil, err
	}
	return orphans, nil
}

// command joins argv parts, failing when the backend does not define the
// leading one
func (i *Installer) command(field string, base []string, rest ...[]string) ([]string, error) {
	if len(base) == 0 {
		return nil, errors.Newf(errors.ErrConfigValid, "backend '%s' does not define %s", i.name, field).
			WithDetail("backend", i.name).
			WithDetail("field", field)
	}

	argv := append([]string{}, base...)
	for _, part := range rest {
		argv = append(argv, part...)
	}
	return argv, nil
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
