package paths

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"syscall"

	"github.com/arthur-debert/pkgman/pkg/errors"
	"github.com/arthur-debert/pkgman/pkg/types"
	"github.com/rs/zerolog"
)

// Kind is the kind of filesystem entry a resolved path must be
type Kind int

const (
	// KindAny accepts any existing entry
	KindAny Kind = iota
	// KindFile requires a regular file
	KindFile
	// KindDir requires a directory
	KindDir
)

// Resolve expands and absolutizes raw, then checks that it exists and is of
// the expected kind. Missing paths and kind mismatches are ErrNotFound.
func Resolve(fsys types.FS, logger zerolog.Logger, raw string, kind Kind) (string, error) {
	if raw == "" {
		return "", errors.New(errors.ErrInvalidInput, "path cannot be empty")
	}

	abs, err := filepath.Abs(ExpandHome(raw))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for '%s'", raw)
	}

	logger.Debug().Str("raw", raw).Str("path", abs).Msg("Resolved path")

	info, err := fsys.Stat(abs)
	if err != nil {
		if missing(err) {
			return "", errors.NotFound(abs, "does not exist")
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot access '%s'", abs).WithDetail("path", abs)
	}

	switch kind {
	case KindFile:
		if !info.Mode().IsRegular() {
			return "", errors.NotFound(abs, "is not a file")
		}
	case KindDir:
		if !info.IsDir() {
			return "", errors.NotFound(abs, "is not a directory")
		}
	}

	return abs, nil
}

// missing reports whether a stat error means nothing exists at the path. A
// regular file used as a directory (ENOTDIR) or a symlink loop (ELOOP) leaves
// no entry to resolve to.
func missing(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist) ||
		stderrors.Is(err, syscall.ENOTDIR) ||
		stderrors.Is(err, syscall.ELOOP)
}
