// Package ignore parses ignore files and matches names against them.
//
// An ignore file holds one entry per line. Blank lines and lines starting
// with `#` are skipped, `@name` lines set boolean flags and every other line
// is a pattern. Patterns are compared literally first and then as doublestar
// globs, so `linux-*` skips every kernel package.
package ignore

import (
	"strings"

	"github.com/arthur-debert/pkgman/pkg/errors"
	"github.com/arthur-debert/pkgman/pkg/logging"
	"github.com/arthur-debert/pkgman/pkg/paths"
	"github.com/arthur-debert/pkgman/pkg/types"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
)

const (
	commentMarker = "#"
	flagMarker    = "@"
)

// Known flags
const (
	// FlagNoCommands disables post-install commands
	FlagNoCommands = "no-commands"
)

// Parser reads ignore files
type Parser struct {
	fs     types.FS
	logger zerolog.Logger
}

// NewParser creates a parser reading from fsys
func NewParser(fsys types.FS, logger zerolog.Logger) *Parser {
	return &Parser{
		fs:     fsys,
		logger: logging.Component(logger, "ignore"),
	}
}

// Parse reads the ignore file at path. It returns nil when the file holds no
// pattern and no flag.
func (p *Parser) Parse(path string) (*types.IgnoreSpec, error) {
	abs, err := paths.Resolve(p.fs, p.logger, path, paths.KindFile)
	if err != nil {
		return nil, err
	}

	p.logger.Info().Str("path", abs).Msg("Loading ignore file")

	data, err := p.fs.ReadFile(abs)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", abs)
	}

	spec := types.NewIgnoreSpec()
	for i, line := range strings.Split(string(data), "\n") {
		lineno := i + 1
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}

		if strings.HasPrefix(line, flagMarker) {
			name := strings.TrimSpace(strings.TrimPrefix(line, flagMarker))
			switch {
			case name == "":
				p.logger.Warn().Str("path", abs).Int("line", lineno).Msg("Flag marker without a name, ignoring it")
			case !spec.AddFlag(name):
				p.logger.Warn().Str("path", abs).Int("line", lineno).
					Msgf("Duplicate option '%s' in %s (line %d)", name, abs, lineno)
			}
			continue
		}

		if !spec.AddPattern(line) {
			p.logger.Warn().Str("path", abs).Int("line", lineno).
				Msgf("Duplicate pattern '%s' in %s (line %d)", line, abs, lineno)
		}
	}

	if spec.IsEmpty() {
		p.logger.Warn().Str("path", abs).Msg("Ignore file is empty")
		return nil, nil
	}

	p.logger.Debug().
		Int("patterns", len(spec.Patterns())).
		Int("flags", len(spec.Flags())).
		Msg("Parsed ignore file")
	return spec, nil
}

// Match reports whether name is excluded by spec. A nil spec matches nothing.
// Malformed glob patterns only match literally.
func Match(spec *types.IgnoreSpec, name string) bool {
	for _, pattern := range spec.Patterns() {
		if pattern == name {
			return true
		}
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
