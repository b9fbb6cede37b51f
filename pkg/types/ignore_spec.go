package types

import (
	"maps"
	"slices"
)

// IgnoreSpec holds literal skip patterns and boolean flags read from an
// ignore file. Patterns and flags live in separate namespaces.
type IgnoreSpec struct {
	patterns []string
	seen     map[string]struct{}
	flags    map[string]bool
}

// NewIgnoreSpec returns an empty spec
func NewIgnoreSpec() *IgnoreSpec {
	return &IgnoreSpec{
		seen:  make(map[string]struct{}),
		flags: make(map[string]bool),
	}
}

// AddPattern appends a pattern. It returns false when the pattern is
// already present, in which case the ignore spec is unchanged.
func (s *IgnoreSpec) AddPattern(pattern string) bool {
	if _, ok := s.seen[pattern]; ok {
		return false
	}
	s.seen[pattern] = struct{}{}
	s.patterns = append(s.patterns, pattern)
	return true
}

// AddFlag sets a flag. It returns false when the flag was already set.
func (s *IgnoreSpec) AddFlag(name string) bool {
	if s.flags[name] {
		return false
	}
	s.flags[name] = true
	return true
}

// Patterns returns the patterns in file order
func (s *IgnoreSpec) Patterns() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.patterns)
}

// Flags returns a copy of the flag table
func (s *IgnoreSpec) Flags() map[string]bool {
	if s == nil {
		return map[string]bool{}
	}
	return maps.Clone(s.flags)
}

// HasFlag reports whether the named flag is set. A nil spec has no flags.
func (s *IgnoreSpec) HasFlag(name string) bool {
	if s == nil {
		return false
	}
	return s.flags[name]
}

// IsEmpty reports whether no pattern and no flag were recorded
func (s *IgnoreSpec) IsEmpty() bool {
	return s == nil || (len(s.patterns) == 0 && len(s.flags) == 0)
}
