package ignore_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arthur-debert/pkgman/pkg/errors"
	"github.com/arthur-debert/pkgman/pkg/filesystem"
	"github.com/arthur-debert/pkgman/pkg/ignore"
	"github.com/arthur-debert/pkgman/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ignorePath = "/home/user/.config/pkgman/.pkgignore"

func setup(t *testing.T, content string) (*ignore.Parser, *bytes.Buffer) {
	t.Helper()

	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/home/user/.config/pkgman", 0755))
	require.NoError(t, fsys.WriteFile(ignorePath, []byte(content), 0644))

	var logs bytes.Buffer
	return ignore.NewParser(fsys, zerolog.New(&logs)), &logs
}

func countWarnings(logs *bytes.Buffer) int {
	return strings.Count(logs.String(), `"level":"warn"`)
}

func TestParse(t *testing.T) {
	parser, logs := setup(t, "# comment\n\n@flagname\npattern1\npattern1\n")

	spec, err := parser.Parse(ignorePath)
	require.NoError(t, err)
	require.NotNil(t, spec)

	assert.Equal(t, map[string]bool{"flagname": true}, spec.Flags())
	assert.Equal(t, []string{"pattern1"}, spec.Patterns())

	assert.Equal(t, 1, countWarnings(logs))
	assert.Contains(t, logs.String(), "Duplicate pattern 'pattern1'")
	assert.Contains(t, logs.String(), "(line 5)")
}

func TestParseTrimsAndSeparatesNamespaces(t *testing.T) {
	parser, logs := setup(t, "  linux-*  \n@ no-commands \n   # indented comment\n\t\n@no-commands\nno-commands\n@\n")

	spec, err := parser.Parse(ignorePath)
	require.NoError(t, err)

	assert.Equal(t, []string{"linux-*", "no-commands"}, spec.Patterns())
	assert.Equal(t, map[string]bool{"no-commands": true}, spec.Flags())
	assert.True(t, spec.HasFlag(ignore.FlagNoCommands))

	assert.Equal(t, 2, countWarnings(logs), "duplicate flag and nameless flag")
	assert.Contains(t, logs.String(), "Duplicate option 'no-commands'")
	assert.Contains(t, logs.String(), "Flag marker without a name")
}

func TestParseEmptyReturnsNil(t *testing.T) {
	for _, content := range []string{"", "\n\n", "# only comments\n# here\n", "@\n"} {
		parser, logs := setup(t, content)

		spec, err := parser.Parse(ignorePath)
		require.NoError(t, err)
		assert.Nil(t, spec)
		assert.Contains(t, logs.String(), "Ignore file is empty")
	}
}

func TestParseMissingFile(t *testing.T) {
	parser, _ := setup(t, "")

	spec, err := parser.Parse("/home/user/.config/pkgman/nope")
	assert.Nil(t, spec)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	spec, err = parser.Parse("/home/user/.config/pkgman")
	assert.Nil(t, spec)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestMatch(t *testing.T) {
	spec := types.NewIgnoreSpec()
	spec.AddPattern("steam")
	spec.AddPattern("linux-*")
	spec.AddPattern("lib32-{mesa,vulkan}*")
	spec.AddPattern("[broken")

	tests := []struct {
		name string
		want bool
	}{
		{"steam", true},
		{"steam-native", false},
		{"linux-lts", true},
		{"linux", false},
		{"lib32-mesa", true},
		{"lib32-vulkan-icd-loader", true},
		{"lib32-glibc", false},
		{"[broken", true},
		{"git", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ignore.Match(spec, tt.name))
		})
	}

	assert.False(t, ignore.Match(nil, "steam"), "nil spec matches nothing")
}
