package goap

import (
	"fmt"
	"sort"
	"strings"
)

// State is a set of named boolean predicates. It is used for the live world
// snapshot, for goal and action conditions, and for the planner's working
// copies. A predicate that is absent from a State is false.
type State map[string]bool

// NewState creates a new empty State.
func NewState() State {
	return make(State)
}

// Clone creates a copy of the State.
func (s State) Clone() State {
	clone := make(State, len(s))
	for k, v := range s {
		clone[k] = v
	}
	return clone
}

// Get returns the value of a predicate, or false if it is absent.
func (s State) Get(name string) bool {
	return s[name]
}

// Set upserts a predicate.
func (s State) Set(name string, value bool) {
	s[name] = value
}

// Remove deletes a predicate if present.
func (s State) Remove(name string) {
	delete(s, name)
}

// Has checks if a predicate is explicitly present.
func (s State) Has(name string) bool {
	_, exists := s[name]
	return exists
}

// Matches reports whether every predicate in conditions has the same value in
// this State, treating absent predicates as false.
func (s State) Matches(conditions State) bool {
	for name, want := range conditions {
		if s[name] != want {
			return false
		}
	}
	return true
}

// Unmet returns the sorted names of the predicates in conditions that this
// State does not agree with.
func (s State) Unmet(conditions State) []string {
	var unmet []string
	for name, want := range conditions {
		if s[name] != want {
			unmet = append(unmet, name)
		}
	}
	sort.Strings(unmet)
	return unmet
}

// Apply merges changes into this State, overwriting existing values.
func (s State) Apply(changes State) {
	for name, value := range changes {
		s[name] = value
	}
}

// Diff returns the sorted names whose effective value differs between this
// State and other.
func (s State) Diff(other State) []string {
	differences := []string{}

	for name, value := range s {
		if other[name] != value {
			differences = append(differences, name)
		}
	}

	for name, value := range other {
		if _, exists := s[name]; !exists && value {
			differences = append(differences, name)
		}
	}

	sort.Strings(differences)
	return differences
}

// Names returns the sorted predicate names.
func (s State) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// String returns a string representation of the State.
func (s State) String() string {
	if len(s) == 0 {
		return "{}"
	}

	parts := make([]string, 0, len(s))
	for _, k := range s.Names() {
		parts = append(parts, fmt.Sprintf("%s: %t", k, s[k]))
	}

	return "{" + strings.Join(parts, ", ") + "}"
}
