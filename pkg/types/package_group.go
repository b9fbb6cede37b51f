package types

import (
	"fmt"
	"slices"
)

// PackageGroup is one named unit of work: packages to install and shell
// commands to run afterwards. A nil slice means the field is absent.
type PackageGroup struct {
	Install  []string `yaml:"install,omitempty" toml:"install,omitempty" json:"install,omitempty"`
	Commands []string `yaml:"commands,omitempty" toml:"commands,omitempty" json:"commands,omitempty"`
}

// HasInstall reports whether the install field is present
func (g PackageGroup) HasInstall() bool { return g.Install != nil }

// HasCommands reports whether the commands field is present
func (g PackageGroup) HasCommands() bool { return g.Commands != nil }

// IsEmpty reports whether both fields are absent
func (g PackageGroup) IsEmpty() bool { return !g.HasInstall() && !g.HasCommands() }

func (g PackageGroup) clone() PackageGroup {
	return PackageGroup{
		Install:  slices.Clone(g.Install),
		Commands: slices.Clone(g.Commands),
	}
}

// PackageGroupSet maps section names to their groups. Names keep the order
// in which they were added, which is only used for listing.
type PackageGroupSet struct {
	names  []string
	groups map[string]PackageGroup
}

// NewPackageGroupSet returns an empty set
func NewPackageGroupSet() *PackageGroupSet {
	return &PackageGroupSet{groups: make(map[string]PackageGroup)}
}

// Add stores a group under name. Empty groups and duplicate names are
// rejected so that a set never holds a group with both fields absent.
func (s *PackageGroupSet) Add(name string, group PackageGroup) error {
	if group.IsEmpty() {
		return fmt.Errorf("group '%s' has neither install nor commands", name)
	}
	if _, exists := s.groups[name]; exists {
		return fmt.Errorf("group '%s' already exists", name)
	}
	s.names = append(s.names, name)
	s.groups[name] = group.clone()
	return nil
}

// Len returns the number of groups
func (s *PackageGroupSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns the group names in insertion order
func (s *PackageGroupSet) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.names)
}

// Get returns a copy of the named group
func (s *PackageGroupSet) Get(name string) (PackageGroup, bool) {
	if s == nil {
		return PackageGroup{}, false
	}
	group, ok := s.groups[name]
	if !ok {
		return PackageGroup{}, false
	}
	return group.clone(), true
}

// Map returns a copy of the set as a plain map, for serialization
func (s *PackageGroupSet) Map() map[string]PackageGroup {
	out := make(map[string]PackageGroup, s.Len())
	if s == nil {
		return out
	}
	for name, group := range s.groups {
		out[name] = group.clone()
	}
	return out
}

// Equal compares two sets ignoring insertion order. A nil set only equals
// another nil set, never an empty one.
func (s *PackageGroupSet) Equal(other *PackageGroupSet) bool {
	if (s == nil) != (other == nil) {
		return false
	}
	if s.Len() != other.Len() {
		return false
	}
	for _, name := range s.Names() {
		a, _ := s.Get(name)
		b, ok := other.Get(name)
		if !ok {
			return false
		}
		if !slices.Equal(a.Install, b.Install) || !slices.Equal(a.Commands, b.Commands) {
			return false
		}
		if a.HasInstall() != b.HasInstall() || a.HasCommands() != b.HasCommands() {
			return false
		}
	}
	return true
}
