package installer

import (
	"fmt"

	"github.com/arthur-debert/pkgman/pkg/errors"
	"github.com/arthur-debert/pkgman/pkg/ignore"
	"github.com/arthur-debert/pkgman/pkg/types"
)

// Skip reasons
const (
	ReasonInstalled = "already installed"
	ReasonIgnored   = "ignored"
)

// Skip is a package left out of a step
type Skip struct {
	Package string `json:"package" yaml:"package" toml:"package"`
	Reason  string `json:"reason" yaml:"reason" toml:"reason"`
}

// Step is the work planned for one group
type Step struct {
	Group    string   `json:"group" yaml:"group" toml:"group"`
	Ignored  bool     `json:"ignored,omitempty" yaml:"ignored,omitempty" toml:"ignored,omitempty"`
	Install  []string `json:"install,omitempty" yaml:"install,omitempty" toml:"install,omitempty"`
	Skipped  []Skip   `json:"skipped,omitempty" yaml:"skipped,omitempty" toml:"skipped,omitempty"`
	Commands []string `json:"commands,omitempty" yaml:"commands,omitempty" toml:"commands,omitempty"`
}

// HasWork reports whether executing the step would run anything
func (s Step) HasWork(runCommands bool) bool {
	if s.Ignored {
		return false
	}
	return len(s.Install) > 0 || (runCommands && len(s.Commands) > 0)
}

// Plan is the ordered list of steps for a run
type Plan struct {
	Steps []Step `json:"steps" yaml:"steps" toml:"steps"`
	// RunCommands is false when the ignore file sets @no-commands
	RunCommands bool `json:"run_commands" yaml:"run_commands" toml:"run_commands"`
}

// Packages returns every package the plan installs, in order
func (p *Plan) Packages() []string {
	var out []string
	for _, step := range p.Steps {
		if !step.Ignored {
			out = append(out, step.Install...)
		}
	}
	return out
}

// IsEmpty reports whether executing the plan would run nothing
func (p *Plan) IsEmpty() bool {
	for _, step := range p.Steps {
		if step.HasWork(p.RunCommands) {
			return false
		}
	}
	return true
}

// BuildPlan selects groups from set and filters their packages. An empty
// selection means every group, in file order. A nil set or spec is treated as
// empty.
func BuildPlan(set *types.PackageGroupSet, spec *types.IgnoreSpec, installed []string, selection []string) (*Plan, error) {
	names, err := selectGroups(set, selection)
	if err != nil {
		return nil, err
	}

	isInstalled := make(map[string]bool, len(installed))
	for _, name := range installed {
		isInstalled[name] = true
	}

	plan := &Plan{
		Steps:       make([]Step, 0, len(names)),
		RunCommands: !spec.HasFlag(ignore.FlagNoCommands),
	}
	plannedBy := make(map[string]string)

	for _, name := range names {
		group, _ := set.Get(name)
		step := Step{Group: name, Commands: group.Commands}

		if ignore.Match(spec, name) {
			step.Ignored = true
			plan.Steps = append(plan.Steps, step)
			continue
		}

		for _, pkg := range group.Install {
			switch {
			case ignore.Match(spec, pkg):
				step.Skipped = append(step.Skipped, Skip{Package: pkg, Reason: ReasonIgnored})
			case isInstalled[pkg]:
				step.Skipped = append(step.Skipped, Skip{Package: pkg, Reason: ReasonInstalled})
			case plannedBy[pkg] == name:
				// repeated within the group
			case plannedBy[pkg] != "":
				step.Skipped = append(step.Skipped, Skip{
					Package: pkg,
					Reason:  fmt.Sprintf("planned in group '%s'", plannedBy[pkg]),
				})
			default:
				plannedBy[pkg] = name
				step.Install = append(step.Install, pkg)
			}
		}

		plan.Steps = append(plan.Steps, step)
	}

	return plan, nil
}

func selectGroups(set *types.PackageGroupSet, selection []string) ([]string, error) {
	if len(selection) == 0 {
		return set.Names(), nil
	}

	wanted := make(map[string]bool, len(selection))
	for _, name := range selection {
		if _, ok := set.Get(name); !ok {
			return nil, errors.Newf(errors.ErrNotFound, "group '%s' is not defined", name).
				WithDetail("group", name).
				WithDetail("available", set.Names())
		}
		wanted[name] = true
	}

	names := make([]string, 0, len(wanted))
	for _, name := range set.Names() {
		if wanted[name] {
			names = append(names, name)
		}
	}
	return names, nil
}
