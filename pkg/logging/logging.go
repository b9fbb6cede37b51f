package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures a logger built by New
type Options struct {
	// Level is the minimum level that gets emitted
	Level zerolog.Level
	// Out receives human readable output, os.Stderr when nil
	Out io.Writer
	// NoColor disables ANSI colors on the console writer
	NoColor bool
	// LogFile, when set, also receives JSON lines
	LogFile string
	// Caller adds file:line to every entry
	Caller bool
}

// New builds a logger instance. Diagnostics never go to stdout, which is kept
// for command results.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    opts.NoColor,
	}

	writers := []io.Writer{consoleWriter}

	var fileErr error
	if opts.LogFile != "" {
		fileHandle, err := setupLogFile(opts.LogFile)
		if err == nil {
			writers = append(writers, fileHandle)
		}
		fileErr = err
	}

	logger := zerolog.New(io.MultiWriter(writers...)).
		Level(opts.Level).
		With().Timestamp().Logger()

	if opts.Caller {
		logger = logger.With().Caller().Logger()
	}

	// If we couldn't create the log file, log the error now with the new logger
	if fileErr != nil {
		logger.Warn().Err(fileErr).Str("path", opts.LogFile).Msg("Failed to create log file, logging to console only")
	}

	logger.Debug().Str("level", opts.Level.String()).Str("logFile", opts.LogFile).Msg("Logger initialized")
	return logger
}

// Nop returns a logger that discards everything
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// ParseLevel maps a configured level name to a zerolog level.
// Accepted names are debug, info, warn (or warning) and error.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// LevelForVerbosity returns the level selected by -v flags. A zero verbosity
// keeps the configured level.
func LevelForVerbosity(verbosity int, configured zerolog.Level) zerolog.Level {
	switch {
	case verbosity <= 0:
		return configured
	case verbosity == 1:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

// Component returns a contextualized logger with the given component name
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// setupLogFile creates the log file and its parent directories
func setupLogFile(logPath string) (*os.File, error) {
	// Create parent directories
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Open log file in append mode
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return file, nil
}

// LogCommand logs a command execution with its arguments
func LogCommand(logger zerolog.Logger, argv []string) {
	if len(argv) == 0 {
		return
	}
	logger.Debug().
		Str("command", argv[0]).
		Strs("args", argv[1:]).
		Msg("Executing command")
}

// LogOperationStart logs the start of an operation and returns a function to log its completion
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().
		Str("operation", operation).
		Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
