package config

import (
	"os"
	"strings"

	"github.com/arthur-debert/pkgman/pkg/errors"
	"github.com/arthur-debert/pkgman/pkg/paths"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// EnvPrefix is the prefix of environment variables read as configuration
const EnvPrefix = "PKGMAN_"

// Keys that may be overridden
const (
	KeyBackend      = "backend"
	KeyLogLevel     = "log_level"
	KeyPackagesFile = "packages_file"
	KeyIgnoreFile   = "ignore_file"
	KeyLogToFile    = "log_to_file"
	KeyLogFile      = "log_file"
)

// LoadOptions controls where configuration is read from
type LoadOptions struct {
	// File is an explicit config file. It must exist when set.
	File string
	// Paths locates the default config file and data files
	Paths *paths.Paths
	// Overrides are applied last, keyed by koanf path (e.g. "backend")
	Overrides map[string]interface{}
	// Logger receives diagnostics about the loaded layers
	Logger zerolog.Logger
}

// Load builds the configuration from every layer and validates it
func Load(opts LoadOptions) (*Config, error) {
	p := opts.Paths
	if p == nil {
		p = paths.New()
	}
	logger := opts.Logger.With().Str("component", "config").Logger()

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User config file
	userFile, err := userConfigFile(opts.File, p)
	if err != nil {
		return nil, err
	}
	if userFile != "" {
		if err := k.Load(file.Provider(userFile), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", userFile).
				WithDetail("path", userFile)
		}
		logger.Debug().Str("path", userFile).Msg("Loaded config file")
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	// 4. Caller overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	cfg, err := decode(k)
	if err != nil {
		return nil, err
	}

	cfg.resolveFiles(p)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("backend", cfg.BackendName).
		Str("packages_file", cfg.PackagesFile).
		Str("ignore_file", cfg.IgnoreFile).
		Msg("Configuration loaded")
	return cfg, nil
}

// Default returns the embedded configuration with default file locations
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		panic("embedded defaults are invalid: " + err.Error())
	}
	cfg, err := decode(k)
	if err != nil {
		panic("embedded defaults are invalid: " + err.Error())
	}
	cfg.resolveFiles(paths.New())
	return cfg
}

func userConfigFile(explicit string, p *paths.Paths) (string, error) {
	if explicit != "" {
		path := paths.ExpandHome(explicit)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", errors.NotFound(path, "does not exist")
			}
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "failed to stat %s", path)
		}
		return path, nil
	}

	path := p.ConfigFile()
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	return path, nil
}

// envKey maps PKGMAN_LOG_LEVEL to log_level and PKGMAN_BACKENDS__PARU__FLAGS
// to backends.paru.flags. The directory overrides read by pkg/paths are not
// configuration keys.
func envKey(name string) string {
	switch name {
	case paths.EnvConfigDir, paths.EnvStateDir:
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func (c *Config) resolveFiles(p *paths.Paths) {
	if c.PackagesFile == "" {
		c.PackagesFile = p.PackagesFile()
	}
	if c.IgnoreFile == "" {
		c.IgnoreFile = p.IgnoreFile()
	}
	c.PackagesFile = paths.ExpandHome(c.PackagesFile)
	c.IgnoreFile = paths.ExpandHome(c.IgnoreFile)
	switch {
	case !c.LogToFile:
		c.LogFile = ""
	case c.LogFile == "":
		c.LogFile = p.LogFilePath()
	default:
		c.LogFile = paths.ExpandHome(c.LogFile)
	}
}
