// Package config loads pkgman's static configuration: which package-manager
// backend to drive, the command set of every backend, where the package-group
// and ignore files live and how much to log.
//
// Configuration is layered with koanf. Embedded defaults come first, then the
// user's config.toml, then PKGMAN_* environment variables, then overrides
// passed by the caller (command line flags).
package config
