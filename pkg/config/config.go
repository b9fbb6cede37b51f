package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/pkgman/pkg/errors"
	"github.com/arthur-debert/pkgman/pkg/logging"
)

// Backend is the command set of one package manager. Every field is an argv
// list, never a shell string.
type Backend struct {
	// Installer installs packages, followed by Flags and the package names
	Installer []string `koanf:"installer" toml:"installer" yaml:"installer"`
	// Flags are appended to Installer
	Flags []string `koanf:"flags" toml:"flags" yaml:"flags"`
	// Updater upgrades the whole system
	Updater []string `koanf:"updater" toml:"updater" yaml:"updater"`
	// GetInstalled prints one installed package name per line
	GetInstalled []string `koanf:"get_installed" toml:"get_installed" yaml:"get_installed"`
	// ClearCache empties the package cache
	ClearCache []string `koanf:"clear_cache" toml:"clear_cache" yaml:"clear_cache"`
	// ListOrphans prints one orphaned package name per line
	ListOrphans []string `koanf:"list_orphans" toml:"list_orphans" yaml:"list_orphans"`
	// Remover removes packages, followed by the package names
	Remover []string `koanf:"remover" toml:"remover" yaml:"remover"`
}

// Config is the complete pkgman configuration
type Config struct {
	BackendName  string             `koanf:"backend" toml:"backend" yaml:"backend"`
	Backends     map[string]Backend `koanf:"backends" toml:"backends" yaml:"backends"`
	LogLevel     string             `koanf:"log_level" toml:"log_level" yaml:"log_level"`
	PackagesFile string             `koanf:"packages_file" toml:"packages_file" yaml:"packages_file"`
	IgnoreFile   string             `koanf:"ignore_file" toml:"ignore_file" yaml:"ignore_file"`
	LogToFile    bool               `koanf:"log_to_file" toml:"log_to_file" yaml:"log_to_file"`
	LogFile      string             `koanf:"log_file" toml:"log_file" yaml:"log_file"`
}

// Backend returns the selected backend
func (c *Config) Backend() (Backend, error) {
	b, ok := c.Backends[c.BackendName]
	if !ok {
		return Backend{}, errors.Newf(errors.ErrBackendNotFound, "backend '%s' is not configured", c.BackendName).
			WithDetail("backend", c.BackendName).
			WithDetail("available", c.BackendNames())
	}
	return b, nil
}

// BackendNames returns the configured backend names, sorted
func (c *Config) BackendNames() []string {
	names := make([]string, 0, len(c.Backends))
	for name := range c.Backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the configuration against its schema
func (c *Config) Validate() error {
	var problems []string

	if c.BackendName == "" {
		problems = append(problems, "backend is not set")
	} else if b, ok := c.Backends[c.BackendName]; !ok {
		problems = append(problems, fmt.Sprintf("backend '%s' is not one of [%s]", c.BackendName, strings.Join(c.BackendNames(), ", ")))
	} else {
		if len(b.Installer) == 0 {
			problems = append(problems, fmt.Sprintf("backends.%s.installer is empty", c.BackendName))
		}
		if len(b.GetInstalled) == 0 {
			problems = append(problems, fmt.Sprintf("backends.%s.get_installed is empty", c.BackendName))
		}
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		problems = append(problems, fmt.Sprintf("log_level '%s' is not one of debug, info, warn, error", c.LogLevel))
	}

	if len(problems) > 0 {
		return errors.Newf(errors.ErrConfigValid, "invalid configuration: %s", strings.Join(problems, "; ")).
			WithDetail("problems", problems)
	}
	return nil
}
