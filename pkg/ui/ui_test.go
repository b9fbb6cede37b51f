package ui_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/arthur-debert/pkgman/pkg/installer"
	"github.com/arthur-debert/pkgman/pkg/types"
	"github.com/arthur-debert/pkgman/pkg/ui"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func render(t *testing.T, format ui.Format, fn func(*ui.Renderer) error) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, fn(ui.NewRenderer(format, &buf)))
	return buf.String()
}

func sampleGroups(t *testing.T) *types.PackageGroupSet {
	t.Helper()
	set := types.NewPackageGroupSet()
	require.NoError(t, set.Add("base", types.PackageGroup{
		Install:  []string{"git", "neovim"},
		Commands: []string{"chsh -s /bin/zsh"},
	}))
	require.NoError(t, set.Add("fonts", types.PackageGroup{Install: []string{"ttf-fira-code"}}))
	return set
}

func TestRenderGroupsText(t *testing.T) {
	out := render(t, ui.FormatText, func(r *ui.Renderer) error { return r.RenderGroups(sampleGroups(t)) })

	want := "base:\n" +
		"    install  : git\n" +
		"    install  : neovim\n" +
		"    command  : chsh -s /bin/zsh\n" +
		"fonts:\n" +
		"    install  : ttf-fira-code\n"
	assert.Equal(t, want, out)
	assert.NotContains(t, out, "\x1b[", "text output has no escape codes")
}

func TestRenderGroupsAbsentAndEmpty(t *testing.T) {
	tests := []struct {
		format ui.Format
		absent string
		empty  string
	}{
		{ui.FormatText, ui.MsgNoGroups + "\n", ui.MsgEmptyGroups + "\n"},
		{ui.FormatJSON, "null\n", "{}\n"},
		{ui.FormatYAML, "null\n", "{}\n"},
		{ui.FormatTOML, ui.MsgNoGroups, ""},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			absent := render(t, tt.format, func(r *ui.Renderer) error { return r.RenderGroups(nil) })
			empty := render(t, tt.format, func(r *ui.Renderer) error { return r.RenderGroups(types.NewPackageGroupSet()) })

			assert.Contains(t, absent, tt.absent)
			assert.Equal(t, tt.empty, empty)
			assert.NotEqual(t, absent, empty)
		})
	}
}

func TestRenderGroupsStructured(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		out := render(t, ui.FormatYAML, func(r *ui.Renderer) error { return r.RenderGroups(sampleGroups(t)) })

		var back map[string]types.PackageGroup
		require.NoError(t, yaml.Unmarshal([]byte(out), &back))
		assert.Equal(t, []string{"git", "neovim"}, back["base"].Install)
		assert.Nil(t, back["fonts"].Commands, "absent fields are omitted")
	})

	t.Run("toml", func(t *testing.T) {
		out := render(t, ui.FormatTOML, func(r *ui.Renderer) error { return r.RenderGroups(sampleGroups(t)) })

		var back map[string]types.PackageGroup
		require.NoError(t, toml.Unmarshal([]byte(out), &back))
		assert.Equal(t, []string{"chsh -s /bin/zsh"}, back["base"].Commands)
	})

	t.Run("json", func(t *testing.T) {
		out := render(t, ui.FormatJSON, func(r *ui.Renderer) error { return r.RenderGroups(sampleGroups(t)) })

		var back map[string]types.PackageGroup
		require.NoError(t, json.Unmarshal([]byte(out), &back))
		assert.Equal(t, []string{"ttf-fira-code"}, back["fonts"].Install)
	})
}

func TestRenderIgnore(t *testing.T) {
	spec := types.NewIgnoreSpec()
	spec.AddPattern("linux-*")
	spec.AddFlag("no-commands")

	out := render(t, ui.FormatText, func(r *ui.Renderer) error { return r.RenderIgnore(spec) })
	assert.Equal(t, "    ignore   : linux-*\n    flag     : @no-commands\n", out)

	out = render(t, ui.FormatYAML, func(r *ui.Renderer) error { return r.RenderIgnore(spec) })
	assert.Equal(t, "patterns:\n  - linux-*\nflags:\n  - no-commands\n", out)

	out = render(t, ui.FormatText, func(r *ui.Renderer) error { return r.RenderIgnore(nil) })
	assert.Equal(t, "Nothing is ignored\n", out)
}

func TestRenderPlan(t *testing.T) {
	plan := &installer.Plan{
		RunCommands: true,
		Steps: []installer.Step{
			{
				Group:    "base",
				Install:  []string{"git", "neovim"},
				Skipped:  []installer.Skip{{Package: "zsh", Reason: installer.ReasonInstalled}},
				Commands: []string{"chsh -s /bin/zsh"},
			},
			{Group: "gaming", Ignored: true},
		},
	}

	out := render(t, ui.FormatText, func(r *ui.Renderer) error { return r.RenderPlan(plan) })
	want := "base:\n" +
		"    install  : git neovim\n" +
		"    skip     : zsh (already installed)\n" +
		"    command  : chsh -s /bin/zsh\n" +
		"gaming: ignored\n"
	assert.Equal(t, want, out)
}

func TestRenderPlanCommandsDisabled(t *testing.T) {
	plan := &installer.Plan{
		RunCommands: false,
		Steps:       []installer.Step{{Group: "post", Commands: []string{"echo hi"}}},
	}

	out := render(t, ui.FormatText, func(r *ui.Renderer) error { return r.RenderPlan(plan) })
	assert.Contains(t, out, "echo hi (commands disabled)")
	assert.Contains(t, out, "there is nothing to do")
}

func TestRenderPlanNoSteps(t *testing.T) {
	out := render(t, ui.FormatText, func(r *ui.Renderer) error { return r.RenderPlan(&installer.Plan{}) })
	assert.Contains(t, out, "nothing to do")
}

func TestRenderPlanJSON(t *testing.T) {
	plan := &installer.Plan{RunCommands: true, Steps: []installer.Step{{Group: "base", Install: []string{"git"}}}}

	out := render(t, ui.FormatJSON, func(r *ui.Renderer) error { return r.RenderPlan(plan) })

	var back installer.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &back))
	assert.Equal(t, *plan, back)
}

func TestRenderResults(t *testing.T) {
	results := []installer.Result{
		{Group: "base", Success: true, Installed: []string{"git", "neovim"}, Commands: 1, Duration: 1500 * time.Millisecond},
		{Group: "gaming", Success: true, Skipped: true, Message: "Group is ignored"},
		{Group: "broken", Message: "Installation failed", Error: errors.New("exit status 1")},
	}

	out := render(t, ui.FormatText, func(r *ui.Renderer) error { return r.RenderResults(results) })
	assert.Contains(t, out, "base     : 2 package(s), 1 command(s) in 1.5s")
	assert.Contains(t, out, "gaming   : Group is ignored")
	assert.Contains(t, out, "broken   : Installation failed")
	assert.Contains(t, out, "3 group(s) processed, 2 package(s) installed, 1 failed")

	out = render(t, ui.FormatJSON, func(r *ui.Renderer) error { return r.RenderResults(results) })
	assert.Contains(t, out, `"error": "exit status 1"`)
	assert.Contains(t, out, `"group": "broken"`)
}

func TestRenderList(t *testing.T) {
	out := render(t, ui.FormatText, func(r *ui.Renderer) error {
		return r.RenderList("Removed", []string{"libfoo", "libbar"})
	})
	assert.Equal(t, "Removed:\n    libfoo\n    libbar\n", out)

	out = render(t, ui.FormatJSON, func(r *ui.Renderer) error { return r.RenderList("removed", nil) })
	assert.JSONEq(t, `{"removed": []}`, out)
}

func TestRenderMessage(t *testing.T) {
	out := render(t, ui.FormatText, func(r *ui.Renderer) error { return r.RenderMessage("done") })
	assert.Equal(t, "done\n", out)

	out = render(t, ui.FormatJSON, func(r *ui.Renderer) error { return r.RenderMessage("done") })
	assert.JSONEq(t, `{"message": "done"}`, out)
}
