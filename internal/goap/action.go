package goap

import (
	"fmt"
)

// Action is a named, costed transformation of the world. Pre lists the
// predicates that must hold before it runs and Post the predicates it
// guarantees afterwards.
//
// Actions are immutable once built and are shared by pointer between search
// nodes; the name is the action's identity.
type Action struct {
	name string
	pre  State
	post State
	cost int64
}

// NewAction creates an Action. The condition maps are copied.
func NewAction(name string, pre, post State, cost int64) *Action {
	if pre == nil {
		pre = NewState()
	}
	if post == nil {
		post = NewState()
	}
	return &Action{
		name: name,
		pre:  pre.Clone(),
		post: post.Clone(),
		cost: cost,
	}
}

func (a *Action) Name() string {
	return a.name
}

// Pre returns the preconditions. Callers must not modify the returned State.
func (a *Action) Pre() State {
	return a.pre
}

// Post returns the postconditions. Callers must not modify the returned State.
func (a *Action) Post() State {
	return a.post
}

func (a *Action) Cost() int64 {
	return a.cost
}

// Satisfies reports whether the action's postconditions set name to value.
func (a *Action) Satisfies(name string, value bool) bool {
	v, ok := a.post[name]
	return ok && v == value
}

// CanExecute checks if the preconditions hold in the given state.
func (a *Action) CanExecute(current State) bool {
	return current.Matches(a.pre)
}

// Equal compares actions by name.
func (a *Action) Equal(other *Action) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.name == other.name
}

func (a *Action) String() string {
	return fmt.Sprintf("Action[%s: pre=%s, post=%s, cost=%d]", a.name, a.pre, a.post, a.cost)
}
