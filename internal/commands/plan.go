package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"upside-down-research.com/oss/goap/internal/catalog"
	"upside-down-research.com/oss/goap/internal/goap"
	"upside-down-research.com/oss/goap/internal/journal"
	"upside-down-research.com/oss/goap/internal/progress"
)

// PlanResult is the JSON form of a planning call.
type PlanResult struct {
	RunID      string   `json:"run_id,omitempty"`
	Source     string   `json:"source,omitempty"`
	Found      bool     `json:"found"`
	Goal       string   `json:"goal,omitempty"`
	Outcome    string   `json:"outcome,omitempty"`
	Actions    []string `json:"actions"`
	Cost       int64    `json:"cost"`
	Expansions int      `json:"expansions"`
}

func newPlanResult(plan *goap.Plan) PlanResult {
	if plan == nil {
		return PlanResult{Actions: []string{}}
	}
	return PlanResult{
		Found:      true,
		Goal:       plan.Goal.Name(),
		Outcome:    goap.OutcomeFound.String(),
		Actions:    plan.ActionNames(),
		Cost:       plan.Cost,
		Expansions: plan.Expansions,
	}
}

// PlanCommand plans once against a world state
type PlanCommand struct {
	RuntimeFlags `embed:""`
	StateFlags   `embed:""`
	Catalog []string `arg:"" name:"catalog" help:"Goal and action files (.yaml, .toml, .json)"`
	Goal    string   `name:"goal" short:"g" help:"Plan only this goal, ignoring priority order"`
	JSON    bool     `name:"json" help:"Print the result as JSON"`
	Record  bool     `name:"record" help:"Save the run to the journal"`
}

// Run executes the plan command
func (cmd *PlanCommand) Run(ctx context.Context) error {
	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
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

	var plan *goap.Plan
	outcome := goap.OutcomeExhausted
	if cmd.Goal != "" {
		goal := cat.Goal(cmd.Goal)
		if goal == nil {
			return fmt.Errorf("goal not found in catalog: %s", cmd.Goal)
		}
		plan, outcome = sess.planner.PlanGoal(goal, cat.Actions, state)
	} else {
		plan = sess.planner.Plan(cat.Goals, cat.Actions, state)
	}

	record := journal.NewRecord(journal.KindPlan, state)
	record.Sources = cat.Sources
	if plan != nil {
		after := state.Clone()
		plan.Apply(after)
		record.AddPlan(plan, after)
	}
	sess.recordPlan(ctx, record.ID, plan)
	if err := sess.saveRun(record); err != nil {
		return err
	}

	if cmd.JSON {
		result := newPlanResult(plan)
		result.RunID = record.ID
		if plan == nil && cmd.Goal != "" {
			result.Goal = cmd.Goal
			result.Outcome = outcome.String()
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	prog := progress.NewIndicatorTo(stdout, true)
	prog.Phase("Plan")
	prog.Info(fmt.Sprintf("state %s", state))
	if plan == nil {
		if cmd.Goal != "" {
			prog.Info(fmt.Sprintf("goal %s: %s", cmd.Goal, outcome))
		}
		prog.Summary(false, "no goal is achievable from this state")
		return nil
	}
	prog.Plan(plan)
	prog.Summary(true, fmt.Sprintf("run %s", record.ID))
	return nil
}
