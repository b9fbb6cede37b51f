package runner

import (
	"context"

	"github.com/arthur-debert/pkgman/pkg/logging"
	"github.com/rs/zerolog"
)

// DryRun logs commands that would change the system instead of running them.
// Read-only queries go to the wrapped runner so plans stay accurate.
type DryRun struct {
	inner  Runner
	logger zerolog.Logger
}

// NewDryRun wraps inner
func NewDryRun(inner Runner, logger zerolog.Logger) *DryRun {
	return &DryRun{
		inner:  inner,
		logger: logging.Component(logger, "runner"),
	}
}

// Output implements Runner
func (d *DryRun) Output(ctx context.Context, argv []string) (string, error) {
	return d.inner.Output(ctx, argv)
}

// Run implements Runner
func (d *DryRun) Run(_ context.Context, argv []string) error {
	d.logger.Info().Strs("argv", argv).Msg("Dry run - command would be executed")
	return nil
}

// Shell implements Runner
func (d *DryRun) Shell(_ context.Context, command string) error {
	d.logger.Info().Str("command", command).Msg("Dry run - command would be executed")
	return nil
}
