package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/pkgman/pkg/errors"
	"github.com/arthur-debert/pkgman/pkg/paths"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config and state directories at a temp dir
func isolate(t *testing.T) (*paths.Paths, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(paths.EnvConfigDir, filepath.Join(dir, "config"))
	t.Setenv(paths.EnvStateDir, filepath.Join(dir, "state"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0755))
	return paths.New(), filepath.Join(dir, "config")
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	p, configDir := isolate(t)

	cfg, err := Load(LoadOptions{Paths: p, Logger: zerolog.Nop()})
	require.NoError(t, err)

	assert.Equal(t, "pacman", cfg.BackendName)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, []string{"pacman", "paru"}, cfg.BackendNames())
	assert.Equal(t, filepath.Join(configDir, "packages.ini"), cfg.PackagesFile)
	assert.Equal(t, filepath.Join(configDir, ".pkgignore"), cfg.IgnoreFile)
	assert.Empty(t, cfg.LogFile)

	backend, err := cfg.Backend()
	require.NoError(t, err)
	assert.Equal(t, []string{"sudo", "pacman", "-S"}, backend.Installer)
	assert.Equal(t, []string{"--noconfirm"}, backend.Flags)
	assert.Equal(t, []string{"pacman", "-Qqe"}, backend.GetInstalled)
	assert.Equal(t, []string{"pacman", "-Qdtq"}, backend.ListOrphans)
	assert.Equal(t, []string{"sudo", "pacman", "-Rns"}, backend.Remover)
}

func TestLoadUserFileFromConfigDir(t *testing.T) {
	p, configDir := isolate(t)
	writeConfig(t, filepath.Join(configDir, "config.toml"), `
backend = "paru"
log_level = "debug"
packages_file = "/srv/packages.ini"

[backends.paru]
flags = ["--noconfirm", "--needed"]
`)

	cfg, err := Load(LoadOptions{Paths: p, Logger: zerolog.Nop()})
	require.NoError(t, err)

	assert.Equal(t, "paru", cfg.BackendName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/srv/packages.ini", cfg.PackagesFile)

	backend, err := cfg.Backend()
	require.NoError(t, err)
	assert.Equal(t, []string{"--noconfirm", "--needed"}, backend.Flags)
	assert.Equal(t, []string{"paru", "-S"}, backend.Installer, "unset keys keep their defaults")
}

func TestLoadLogFile(t *testing.T) {
	t.Run("off by default", func(t *testing.T) {
		p, configDir := isolate(t)
		writeConfig(t, filepath.Join(configDir, "config.toml"), `log_file = "/tmp/ignored.log"`)

		cfg, err := Load(LoadOptions{Paths: p, Logger: zerolog.Nop()})
		require.NoError(t, err)
		assert.False(t, cfg.LogToFile)
		assert.Empty(t, cfg.LogFile, "a path alone does not enable file logging")
	})

	t.Run("defaults to the state directory", func(t *testing.T) {
		p, _ := isolate(t)
		t.Setenv("PKGMAN_LOG_TO_FILE", "true")

		cfg, err := Load(LoadOptions{Paths: p, Logger: zerolog.Nop()})
		require.NoError(t, err)
		assert.True(t, cfg.LogToFile)
		assert.Equal(t, p.LogFilePath(), cfg.LogFile)
		assert.Equal(t, paths.LogFileName, filepath.Base(cfg.LogFile))
	})

	t.Run("explicit path is expanded", func(t *testing.T) {
		p, configDir := isolate(t)
		t.Setenv("HOME", "/home/tester")
		writeConfig(t, filepath.Join(configDir, "config.toml"), "log_to_file = true\nlog_file = \"~/pkgman.log\"\n")

		cfg, err := Load(LoadOptions{Paths: p, Logger: zerolog.Nop()})
		require.NoError(t, err)
		assert.Equal(t, "/home/tester/pkgman.log", cfg.LogFile)
	})
}

func TestLoadExplicitFile(t *testing.T) {
	p, _ := isolate(t)
	custom := filepath.Join(t.TempDir(), "custom.toml")
	writeConfig(t, custom, `
backend = "apt"

[backends.apt]
installer = ["sudo", "apt-get", "install"]
flags = ["-y"]
get_installed = ["dpkg-query", "-W", "-f=${binary:Package}\n"]
`)

	cfg, err := Load(LoadOptions{File: custom, Paths: p, Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, "apt", cfg.BackendName)
	assert.Equal(t, []string{"apt", "pacman", "paru"}, cfg.BackendNames())
}

func TestLoadExplicitFileMissing(t *testing.T) {
	p, _ := isolate(t)

	_, err := Load(LoadOptions{File: "/nonexistent/pkgman.toml", Paths: p, Logger: zerolog.Nop()})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestLoadMalformedFile(t *testing.T) {
	p, configDir := isolate(t)
	writeConfig(t, filepath.Join(configDir, "config.toml"), "backend = [unterminated\n")

	_, err := Load(LoadOptions{Paths: p, Logger: zerolog.Nop()})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestLoadEnvironment(t *testing.T) {
	p, _ := isolate(t)
	t.Setenv("PKGMAN_BACKEND", "paru")
	t.Setenv("PKGMAN_LOG_LEVEL", "error")
	t.Setenv("PKGMAN_BACKENDS__PARU__FLAGS", "--noconfirm,--needed")

	cfg, err := Load(LoadOptions{Paths: p, Logger: zerolog.Nop()})
	require.NoError(t, err)

	assert.Equal(t, "paru", cfg.BackendName)
	assert.Equal(t, "error", cfg.LogLevel)
	backend, err := cfg.Backend()
	require.NoError(t, err)
	assert.Equal(t, []string{"--noconfirm", "--needed"}, backend.Flags)
}

func TestLoadOverridesWin(t *testing.T) {
	p, configDir := isolate(t)
	writeConfig(t, filepath.Join(configDir, "config.toml"), `backend = "paru"`)
	t.Setenv("PKGMAN_BACKEND", "paru")

	cfg, err := Load(LoadOptions{
		Paths:     p,
		Logger:    zerolog.Nop(),
		Overrides: map[string]interface{}{KeyBackend: "pacman", KeyIgnoreFile: "/tmp/ignore"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pacman", cfg.BackendName)
	assert.Equal(t, "/tmp/ignore", cfg.IgnoreFile)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{
			name:     "unknown backend",
			content:  `backend = "yay"`,
			contains: "backend 'yay' is not one of [pacman, paru]",
		},
		{
			name: "backend without installer",
			content: `
backend = "brew"
[backends.brew]
get_installed = ["brew", "list"]
`,
			contains: "backends.brew.installer is empty",
		},
		{
			name: "backend without get_installed",
			content: `
backend = "brew"
[backends.brew]
installer = ["brew", "install"]
`,
			contains: "backends.brew.get_installed is empty",
		},
		{
			name:     "unknown log level",
			content:  `log_level = "loud"`,
			contains: "log_level 'loud'",
		},
		{
			name:     "empty backend",
			content:  `backend = ""`,
			contains: "backend is not set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, configDir := isolate(t)
			writeConfig(t, filepath.Join(configDir, "config.toml"), tt.content)

			cfg, err := Load(LoadOptions{Paths: p, Logger: zerolog.Nop()})
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid), "got %v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestBackendNotFound(t *testing.T) {
	cfg := Default()
	cfg.BackendName = "zypper"

	_, err := cfg.Backend()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackendNotFound))
	assert.Equal(t, []string{"pacman", "paru"}, errors.GetErrorDetails(err)["available"])
}

func TestDefaultIsValid(t *testing.T) {
	isolate(t)
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "pacman", cfg.BackendName)
}

func TestGenerateConfigContent(t *testing.T) {
	content := GenerateConfigContent()

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "[") {
			continue
		}
		t.Errorf("line left uncommented: %q", line)
	}
	assert.Contains(t, content, "[backends.pacman]")
	assert.Contains(t, content, `# backend = "pacman"`)

	// The generated file is valid TOML that sets nothing but empty tables
	var parsed map[string]interface{}
	require.NoError(t, toml.Unmarshal([]byte(content), &parsed))
	assert.NotContains(t, parsed, "backend")
}

func TestMarshal(t *testing.T) {
	isolate(t)
	cfg := Default()

	data, err := Marshal(cfg)
	require.NoError(t, err)

	var back Config
	require.NoError(t, toml.Unmarshal(data, &back))
	assert.Equal(t, cfg.BackendName, back.BackendName)
	assert.Equal(t, cfg.Backends, back.Backends)
	assert.Equal(t, cfg.PackagesFile, back.PackagesFile)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "backend", envKey("PKGMAN_BACKEND"))
	assert.Equal(t, "log_level", envKey("PKGMAN_LOG_LEVEL"))
	assert.Equal(t, "backends.paru.flags", envKey("PKGMAN_BACKENDS__PARU__FLAGS"))
	assert.Empty(t, envKey(paths.EnvConfigDir))
	assert.Empty(t, envKey(paths.EnvStateDir))
}
