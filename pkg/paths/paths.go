package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for pkgman
	EnvConfigDir = "PKGMAN_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for pkgman
	EnvStateDir = "PKGMAN_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name for pkgman-specific files
	AppDirName = "pkgman"

	// ConfigFileName is the name of the configuration file
	ConfigFileName = "config.toml"

	// PackagesFileName is the name of the default package-group file
	PackagesFileName = "packages.ini"

	// IgnoreFileName is the name of the default ignore file
	IgnoreFileName = ".pkgignore"

	// LogFileName is the name of the log file
	LogFileName = "pkgman.log"
)

// Paths provides the default locations of pkgman's files
type Paths struct {
	configDir string
	stateDir  string
}

// New creates a Paths instance, respecting environment overrides
func New() *Paths {
	p := &Paths{}

	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.configDir = ExpandHome(configDir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if stateDir := os.Getenv(EnvStateDir); stateDir != "" {
		p.stateDir = ExpandHome(stateDir)
	} else {
		p.stateDir = filepath.Join(xdg.StateHome, AppDirName)
	}

	return p
}

// ConfigDir returns the configuration directory
func (p *Paths) ConfigDir() string { return p.configDir }

// StateDir returns the state directory
func (p *Paths) StateDir() string { return p.stateDir }

// ConfigFile returns the default configuration file path
func (p *Paths) ConfigFile() string { return filepath.Join(p.configDir, ConfigFileName) }

// PackagesFile returns the default package-group file path
func (p *Paths) PackagesFile() string { return filepath.Join(p.configDir, PackagesFileName) }

// IgnoreFile returns the default ignore file path
func (p *Paths) IgnoreFile() string { return filepath.Join(p.configDir, IgnoreFileName) }

// LogFilePath returns the log file path
func (p *Paths) LogFilePath() string { return filepath.Join(p.stateDir, LogFileName) }

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to HOME env var
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				// Can't expand, return as-is
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		// Handle both ~/ and ~
		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}
