package goap

import "fmt"

// Goal is a target world state the agent may pursue. It is eligible only while
// its IsValid gate matches the live state. Goal priority is positional: the
// caller's goal list is ordered from most to least important.
type Goal struct {
	name string

	// isValid gates whether the goal may currently be pursued
	isValid State

	// desiredState is what a plan for this goal must achieve
	desiredState State
}

// NewGoal creates a new Goal. The condition maps are copied.
func NewGoal(name string, isValid, desiredState State) *Goal {
	if isValid == nil {
		isValid = NewState()
	}
	if desiredState == nil {
		desiredState = NewState()
	}
	return &Goal{
		name:         name,
		isValid:      isValid.Clone(),
		desiredState: desiredState.Clone(),
	}
}

// Name returns the goal's name.
func (g *Goal) Name() string {
	return g.name
}

// IsValid returns the gate conditions. Callers must not modify the result.
func (g *Goal) IsValid() State {
	return g.isValid
}

// DesiredState returns the conditions a plan must achieve. Callers must not
// modify the result.
func (g *Goal) DesiredState() State {
	return g.desiredState
}

// Eligible checks if every gate predicate matches the current state.
func (g *Goal) Eligible(current State) bool {
	return current.Matches(g.isValid)
}

// IsSatisfied checks if the goal is satisfied by the current state.
func (g *Goal) IsSatisfied(current State) bool {
	return current.Matches(g.desiredState)
}

// String returns a string representation of the goal.
func (g *Goal) String() string {
	return fmt.Sprintf("Goal[%s: valid=%s, desired=%s]", g.name, g.isValid, g.desiredState)
}

// Clone creates a copy of this goal.
func (g *Goal) Clone() *Goal {
	return &Goal{
		name:         g.name,
		isValid:      g.isValid.Clone(),
		desiredState: g.desiredState.Clone(),
	}
}
