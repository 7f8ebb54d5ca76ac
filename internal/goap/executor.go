package goap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// ErrPreconditionsUnmet is returned by a strict Executor when an action's
// preconditions do not hold at the point it is reached.
var ErrPreconditionsUnmet = errors.New("preconditions not met")

// HandlerFunc performs the side effects of one action. The state it receives
// reflects every earlier action in the plan; postconditions are applied by the
// Executor after the handler returns.
type HandlerFunc func(ctx context.Context, action *Action, current State) error

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithStrictPreconditions makes the executor fail when an action's
// preconditions are not met instead of logging a warning.
func WithStrictPreconditions() ExecutorOption {
	return func(e *Executor) {
		e.strict = true
	}
}

// WithActionDelay pauses between actions.
func WithActionDelay(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.delay = d
	}
}

// Executor runs a plan's actions in order on behalf of the caller, invoking a
// registered handler per action name and applying postconditions to the
// caller's state.
type Executor struct {
	handlers map[string]HandlerFunc
	strict   bool
	delay    time.Duration
}

// NewExecutor creates a new executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		handlers: make(map[string]HandlerFunc),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle registers the handler for an action name. Actions without a handler
// only have their postconditions applied.
func (e *Executor) Handle(actionName string, fn HandlerFunc) {
	e.handlers[actionName] = fn
}

// Execute runs the plan against current, mutating it as each action completes.
// On error, current reflects the actions that finished before the failure.
func (e *Executor) Execute(ctx context.Context, plan *Plan, current State) error {
	log.Debug("Executing plan", "goal", plan.Goal.Name(), "numActions", len(plan.Actions))

	for i, action := range plan.Actions {
		select {
		case <-ctx.Done():
			return fmt.Errorf("plan for '%s' interrupted at action %d: %w", plan.Goal.Name(), i, ctx.Err())
		default:
		}

		if !action.CanExecute(current) {
			if e.strict {
				return fmt.Errorf("action '%s' cannot execute: %w (unmet: %v)", action.Name(), ErrPreconditionsUnmet, current.Unmet(action.Pre()))
			}
			log.Warn("Executing action with unmet preconditions", "action", action.Name(), "unmet", current.Unmet(action.Pre()))
		}

		log.Debug("Executing action", "index", i, "action", action.Name())

		if fn, ok := e.handlers[action.Name()]; ok && fn != nil {
			if err := fn(ctx, action, current); err != nil {
				return fmt.Errorf("action '%s' execution failed: %w", action.Name(), err)
			}
		}

		current.Apply(action.Post())

		if e.delay > 0 && i < len(plan.Actions)-1 {
			time.Sleep(e.delay)
		}
	}

	return nil
}
