package installer

import (
	"testing"

	"github.com/arthur-debert/pkgman/pkg/errors"
	"github.com/arthur-debert/pkgman/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupSet(t *testing.T) *types.PackageGroupSet {
	t.Helper()
	set := types.NewPackageGroupSet()
	require.NoError(t, set.Add("base", types.PackageGroup{
		Install:  []string{"git", "neovim", "zsh", "git"},
		Commands: []string{"chsh -s /bin/zsh"},
	}))
	require.NoError(t, set.Add("kernel", types.PackageGroup{Install: []string{"linux-lts", "linux-firmware"}}))
	require.NoError(t, set.Add("gaming", types.PackageGroup{Install: []string{"steam"}}))
	require.NoError(t, set.Add("dev", types.PackageGroup{Install: []string{"neovim", "go"}}))
	return set
}

func TestBuildPlan(t *testing.T) {
	spec := types.NewIgnoreSpec()
	spec.AddPattern("linux-*")
	spec.AddPattern("gaming")

	plan, err := BuildPlan(groupSet(t), spec, []string{"zsh"}, nil)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 4)
	assert.True(t, plan.RunCommands)

	base := plan.Steps[0]
	assert.Equal(t, "base", base.Group)
	assert.Equal(t, []string{"git", "neovim"}, base.Install)
	assert.Equal(t, []Skip{{Package: "zsh", Reason: ReasonInstalled}}, base.Skipped)
	assert.Equal(t, []string{"chsh -s /bin/zsh"}, base.Commands)

	kernel := plan.Steps[1]
	assert.Empty(t, kernel.Install)
	assert.Equal(t, []Skip{
		{Package: "linux-lts", Reason: ReasonIgnored},
		{Package: "linux-firmware", Reason: ReasonIgnored},
	}, kernel.Skipped)

	gaming := plan.Steps[2]
	assert.True(t, gaming.Ignored)
	assert.Empty(t, gaming.Install)

	dev := plan.Steps[3]
	assert.Equal(t, []string{"go"}, dev.Install)
	assert.Equal(t, []Skip{{Package: "neovim", Reason: "planned in group 'base'"}}, dev.Skipped)

	assert.Equal(t, []string{"git", "neovim", "go"}, plan.Packages())
	assert.False(t, plan.IsEmpty())
}

func TestBuildPlanSelection(t *testing.T) {
	plan, err := BuildPlan(groupSet(t), nil, nil, []string{"dev", "kernel", "dev"})
	require.NoError(t, err)

	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "kernel", plan.Steps[0].Group, "steps keep file order")
	assert.Equal(t, "dev", plan.Steps[1].Group)
	assert.Equal(t, []string{"neovim", "go"}, plan.Steps[1].Install)
}

func TestBuildPlanUnknownGroup(t *testing.T) {
	plan, err := BuildPlan(groupSet(t), nil, nil, []string{"base", "desktop"})
	assert.Nil(t, plan)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.Contains(t, err.Error(), "group 'desktop' is not defined")
}

func TestBuildPlanNoCommandsFlag(t *testing.T) {
	spec := types.NewIgnoreSpec()
	spec.AddFlag("no-commands")

	set := types.NewPackageGroupSet()
	require.NoError(t, set.Add("post", types.PackageGroup{Commands: []string{"echo hi"}}))

	plan, err := BuildPlan(set, spec, nil, nil)
	require.NoError(t, err)
	assert.False(t, plan.RunCommands)
	assert.True(t, plan.IsEmpty(), "a commands-only group has no work without commands")
}

func TestBuildPlanNilSet(t *testing.T) {
	plan, err := BuildPlan(nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Steps)
	assert.True(t, plan.IsEmpty())

	_, err = BuildPlan(nil, nil, nil, []string{"base"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestBuildPlanEverythingInstalled(t *testing.T) {
	set := types.NewPackageGroupSet()
	require.NoError(t, set.Add("base", types.PackageGroup{Install: []string{"git"}}))

	plan, err := BuildPlan(set, nil, []string{"git"}, nil)
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
}
