package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/goap/internal/catalog"
	"upside-down-research.com/oss/goap/internal/goap"
	"upside-down-research.com/oss/goap/internal/journal"
	"upside-down-research.com/oss/goap/internal/progress"
)

// SimulateCommand runs the plan-then-execute loop until nothing is left to do
type SimulateCommand struct {
	RuntimeFlags `embed:""`
	StateFlags   `embed:""`
	Catalog      []string      `arg:"" name:"catalog" help:"Goal and action files (.yaml, .toml, .json)"`
	MaxSteps     int           `name:"max-steps" help:"Override simulation.max_steps"`
	Strict       bool          `name:"strict" help:"Fail when an action's preconditions do not hold"`
	Delay        time.Duration `name:"delay" help:"Pause after each action"`
	Record       bool          `name:"record" help:"Save the run to the journal"`
}

// Run executes the simulate command
func (cmd *SimulateCommand) Run(ctx context.Context) error {
	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}
	if cmd.MaxSteps > 0 {
		cfg.Simulation.MaxSteps = cmd.MaxSteps
	}
	if cmd.Strict {
		cfg.Simulation.Strict = true
	}

	cat, err := catalog.LoadFiles(cmd.Catalog...)
	if err != nil {
		return err
	}
	state, err := cmd.loadState()
	if err != nil {
		return err
	}

	sess, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer sess.close(ctx)
	if cmd.Record {
		sess.enableJournal()
	}

	var execOpts []goap.ExecutorOption
	if cfg.Simulation.Strict {
		execOpts = append(execOpts, goap.WithStrictPreconditions())
	}
	if cmd.Delay > 0 {
		execOpts = append(execOpts, goap.WithActionDelay(cmd.Delay))
	}
	executor := goap.NewExecutor(execOpts...)

	record := journal.NewRecord(journal.KindSimulate, state)
	record.Sources = cat.Sources

	prog := progress.NewIndicatorTo(stdout, true)
	prog.Phase("Simulation")
	prog.Info(fmt.Sprintf("state %s", state))

	agent := goap.NewAgent(sess.planner, executor, cat.Goals, cat.Actions)
	result, runErr := agent.Run(ctx, state, cfg.Simulation.MaxSteps, func(step goap.Step) {
		prog.Step(fmt.Sprintf("step %d", step.Index+1))
		prog.Plan(step.Plan)
		prog.Changes(step.Before, step.After)
		record.AddPlan(step.Plan, step.After)
		sess.recordPlan(ctx, record.ID, step.Plan)
	})
	if runErr != nil {
		prog.Error("simulation", runErr)
		if errors.Is(runErr, goap.ErrPreconditionsUnmet) {
			log.Error("Plan could not be executed", "error", runErr)
		}
		record.Stop = "error"
		if err := sess.saveRun(record); err != nil {
			log.Warn("Failed to save run", "error", err)
		}
		return runErr
	}

	record.Stop = string(result.Reason)
	if err := sess.saveRun(record); err != nil {
		return err
	}

	prog.Info(fmt.Sprintf("final %s", result.Final))
	prog.Summary(result.Reason != goap.StopCancelled,
		fmt.Sprintf("%d steps, total cost %d, stopped: %s", len(result.Steps), record.TotalCost(), result.Reason))
	return nil
}
