// Package paths provides centralized path handling for pkgman.
//
// It implements the path resolution used by every file reader and the
// default locations of pkgman's files under the XDG Base Directory layout.
//
// # Environment Variables
//
//   - PKGMAN_CONFIG_DIR: Override the config directory (default: $XDG_CONFIG_HOME/pkgman)
//   - PKGMAN_STATE_DIR: Override the state directory (default: $XDG_STATE_HOME/pkgman)
//
// # Default files
//
//   - config.toml, packages.ini and .pkgignore live in the config directory
//   - pkgman.log lives in the state directory
//
// # Usage
//
//	abs, err := paths.Resolve(fs, logger, "~/packages.ini", paths.KindFile)
//	if errors.IsErrorCode(err, errors.ErrNotFound) {
//	    // missing or not a regular file
//	}
package paths
