// Package runner executes package-manager commands and post-install shell
// commands.
//
// Package-manager commands are argv lists run without a shell. Post-install
// commands are shell command lines interpreted by mvdan.cc/sh, so they behave
// the same whatever /bin/sh is on the machine.
package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/arthur-debert/pkgman/pkg/errors"
	"github.com/arthur-debert/pkgman/pkg/logging"
	"github.com/rs/zerolog"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Runner runs external commands. Calls block until the command exits.
type Runner interface {
	// Output runs argv and returns its standard output. It is used for
	// read-only queries such as listing installed packages.
	Output(ctx context.Context, argv []string) (string, error)
	// Run runs argv with the runner's standard streams attached
	Run(ctx context.Context, argv []string) error
	// Shell interprets a shell command line
	Shell(ctx context.Context, command string) error
}

// Options configures an Exec runner
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Dir is the working directory, the current one when empty
	Dir string
	// Env is appended to the process environment
	Env    []string
	Logger zerolog.Logger
}

// Exec runs commands for real
type Exec struct {
	opts   Options
	logger zerolog.Logger
}

// New creates an Exec runner. Nil streams default to the process streams.
func New(opts Options) *Exec {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Exec{
		opts:   opts,
		logger: logging.Component(opts.Logger, "runner"),
	}
}

func (e *Exec) environ() []string {
	return append(os.Environ(), e.opts.Env...)
}

func (e *Exec) command(ctx context.Context, argv []string) (*exec.Cmd, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New(errors.ErrInvalidInput, "empty command")
	}
	logging.LogCommand(e.logger, argv)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = e.opts.Dir
	cmd.Env = e.environ()
	return cmd, nil
}

// Output implements Runner
func (e *Exec) Output(ctx context.Context, argv []string) (string, error) {
	cmd, err := e.command(ctx, argv)
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), commandFailed(err, argv, stderr.String())
	}

	e.logger.Debug().
		Str("command", argv[0]).
		Int("bytes", stdout.Len()).
		Msg("Command completed")
	return stdout.String(), nil
}

// Run implements Runner. Standard error is also kept for the error message.
func (e *Exec) Run(ctx context.Context, argv []string) error {
	cmd, err := e.command(ctx, argv)
	if err != nil {
		return err
	}

	var stderr bytes.Buffer
	cmd.Stdin = e.opts.Stdin
	cmd.Stdout = e.opts.Stdout
	cmd.Stderr = io.MultiWriter(e.opts.Stderr, &stderr)

	if err := cmd.Run(); err != nil {
		return commandFailed(err, argv, stderr.String())
	}
	return nil
}

// Shell implements Runner
func (e *Exec) Shell(ctx context.Context, command string) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "cannot parse command %q", command).
			WithDetail("command", command)
	}

	e.logger.Debug().Str("command", command).Msg("Executing shell command")

	var stderr bytes.Buffer
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(e.environ()...)),
		interp.StdIO(e.opts.Stdin, e.opts.Stdout, io.MultiWriter(e.opts.Stderr, &stderr)),
	}
	if e.opts.Dir != "" {
		opts = append(opts, interp.Dir(e.opts.Dir))
	}

	sh, err := interp.New(opts...)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to create shell interpreter")
	}

	if err := sh.Run(ctx, prog); err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return errors.Newf(errors.ErrCommandFailed, "command %q exited with status %d", command, int(status)).
				WithDetail("command", command).
				WithDetail("exit_code", int(status)).
				WithDetail("stderr", strings.TrimSpace(stderr.String()))
		}
		return errors.Wrapf(err, errors.ErrCommandFailed, "command %q failed", command).
			WithDetail("command", command)
	}
	return nil
}

func commandFailed(err error, argv []string, stderr string) error {
	line := strings.Join(argv, " ")
	wrapped := errors.Wrapf(err, errors.ErrCommandFailed, "command '%s' failed", line).
		WithDetail("command", line).
		WithDetail("stderr", strings.TrimSpace(stderr))

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		wrapped = wrapped.WithDetail("exit_code", exitErr.ExitCode())
	}
	return wrapped
}
