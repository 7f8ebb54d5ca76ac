package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/goap/internal/goap"
	"upside-down-research.com/oss/goap/internal/journal"
	"upside-down-research.com/oss/goap/internal/progress"
)

// This demo drives a small feature-delivery pipeline: the planner picks the
// highest priority goal that is still open, the executor runs each action's
// handler, and the agent repeats until nothing is left to do.

func main() {
	log.SetLevel(log.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println()
	fmt.Println("🎭 GOAP Demo: Delivering a Feature with Quality Gates")

	goals := deliveryGoals()
	actions := deliveryActions()

	initial := goap.NewState()
	initial.Set("project_initialized", true)

	planner := goap.NewPlanner(goap.WithMaxExpansions(1000))
	executor := goap.NewExecutor(goap.WithStrictPreconditions())
	for _, a := range actions {
		executor.Handle(a.Name(), simulateWork)
	}

	record := journal.NewRecord(journal.KindSimulate, initial)
	prog := progress.NewIndicator(true)

	agent := goap.NewAgent(planner, executor, goals, actions)
	result, err := agent.Run(ctx, initial, 10, func(step goap.Step) {
		prog.Phase(fmt.Sprintf("Step %d", step.Index+1))
		prog.Plan(step.Plan)
		prog.Changes(step.Before, step.After)
		record.AddPlan(step.Plan, step.After)
	})
	if err != nil {
		log.Error("Demo execution failed", "error", err)
		os.Exit(1)
	}
	record.Stop = string(result.Reason)

	outputPath := "./output/goap-demo"
	if err := journal.New(outputPath).Save(record); err != nil {
		log.Error("Failed to save run", "error", err)
		os.Exit(1)
	}

	prog.Summary(true, fmt.Sprintf("%d steps, total cost %d, stopped: %s", len(result.Steps), record.TotalCost(), result.Reason))
	fmt.Println()
	fmt.Println("📁 Run saved at:", outputPath+"/"+record.ID+"/run.json")
	fmt.Println()
}

// deliveryGoals are in priority order: ship first, then tidy up.
func deliveryGoals() []*goap.Goal {
	return []*goap.Goal{
		goap.NewGoal("DeliverFeature",
			goap.State{"changes_committed": false},
			goap.State{"changes_committed": true}),
		goap.NewGoal("WriteReleaseNotes",
			goap.State{"changes_committed": true, "release_notes_written": false},
			goap.State{"release_notes_written": true}),
	}
}

func deliveryActions() []*goap.Action {
	return []*goap.Action{
		goap.NewAction("DesignFeature",
			goap.State{"project_initialized": true},
			goap.State{"feature_designed": true}, 8),
		goap.NewAction("ImplementCode",
			goap.State{"feature_designed": true},
			goap.State{"code_written": true}, 12),
		goap.NewAction("WriteTests",
			goap.State{"code_written": true},
			goap.State{"tests_written": true}, 10),
		goap.NewAction("RunTests",
			goap.State{"tests_written": true},
			goap.State{"tests_passed": true}, 4),
		goap.NewAction("LintCode",
			goap.State{"code_written": true},
			goap.State{"lint_passed": true}, 5),
		goap.NewAction("BuildProject",
			goap.State{"code_written": true, "lint_passed": true},
			goap.State{"build_succeeded": true}, 8),
		goap.NewAction("PassQualityGates",
			goap.State{"tests_passed": true, "build_succeeded": true},
			goap.State{"quality_gates_passed": true}, 2),
		goap.NewAction("CommitChanges",
			goap.State{"quality_gates_passed": true},
			goap.State{"changes_committed": true}, 3),
		goap.NewAction("DraftReleaseNotes",
			goap.State{"changes_committed": true},
			goap.State{"release_notes_written": true}, 4),
	}
}

// simulateWork stands in for real tool or model calls.
func simulateWork(ctx context.Context, action *goap.Action, _ goap.State) error {
	d := time.Duration(50+rand.Intn(150)) * time.Millisecond
	log.Debug("Working", "action", action.Name(), "for", d)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
