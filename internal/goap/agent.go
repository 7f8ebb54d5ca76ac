package goap

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// StopReason explains why an Agent run ended.
type StopReason string

const (
	StopIdle      StopReason = "idle"
	StopMaxSteps  StopReason = "max_steps"
	StopStalled   StopReason = "stalled"
	StopCancelled StopReason = "cancelled"
)

// Step is one plan-then-execute cycle of an Agent run.
type Step struct {
	Index  int
	Plan   *Plan
	Before State
	After  State
}

// StepFunc is called after every completed step.
type StepFunc func(step Step)

// RunResult summarises an Agent run.
type RunResult struct {
	Steps  []Step
	Final  State
	Reason StopReason
}

// Agent repeatedly asks the planner for a plan and executes it against a
// working copy of the world, until nothing is left to do.
type Agent struct {
	planner  *Planner
	executor *Executor
	goals    []*Goal
	actions  []*Action
}

// NewAgent creates an Agent. A nil executor applies postconditions only.
func NewAgent(planner *Planner, executor *Executor, goals []*Goal, actions []*Action) *Agent {
	if planner == nil {
		planner = NewPlanner()
	}
	if executor == nil {
		executor = NewExecutor()
	}
	return &Agent{
		planner:  planner,
		executor: executor,
		goals:    goals,
		actions:  actions,
	}
}

// Run plans and executes until no goal is actionable, maxSteps cycles have
// run, a plan fails to change the world, or ctx is cancelled. The initial
// state is not modified.
func (a *Agent) Run(ctx context.Context, initial State, maxSteps int, onStep StepFunc) (*RunResult, error) {
	result := &RunResult{Final: initial.Clone()}

	for i := 0; maxSteps <= 0 || i < maxSteps; i++ {
		if ctx.Err() != nil {
			result.Reason = StopCancelled
			return result, nil
		}

		plan := a.planner.Plan(a.goals, a.actions, result.Final)
		if plan == nil {
			log.Info("Agent idle", "steps", len(result.Steps))
			result.Reason = StopIdle
			return result, nil
		}

		before := result.Final.Clone()
		if err := a.executor.Execute(ctx, plan, result.Final); err != nil {
			if ctx.Err() != nil {
				result.Reason = StopCancelled
				return result, nil
			}
			return result, fmt.Errorf("step %d (%s): %w", i, plan.Goal.Name(), err)
		}

		step := Step{
			Index:  i,
			Plan:   plan,
			Before: before,
			After:  result.Final.Clone(),
		}
		result.Steps = append(result.Steps, step)
		if onStep != nil {
			onStep(step)
		}

		if len(before.Diff(result.Final)) == 0 {
			log.Warn("Plan did not change the world, stopping", "goal", plan.Goal.Name())
			result.Reason = StopStalled
			return result, nil
		}
	}

	result.Reason = StopMaxSteps
	return result, nil
}
