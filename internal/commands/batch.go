package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"upside-down-research.com/oss/goap/internal/catalog"
	"upside-down-research.com/oss/goap/internal/journal"
)

// BatchCommand plans many state snapshots against one catalog concurrently
type BatchCommand struct {
	RuntimeFlags `embed:""`
	Catalog      []string `name:"catalog" short:"c" help:"Goal and action files (repeatable)" required:""`
	States       []string `arg:"" name:"states" help:"World state files to plan from"`
	Concurrency  int      `name:"concurrency" short:"j" help:"Planning calls in flight (default: number of CPUs)"`
	JSON         bool     `name:"json" help:"Print one JSON object per state"`
}

// Run executes the batch command
func (cmd *BatchCommand) Run(ctx context.Context) error {
	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}

	cat, err := catalog.LoadFiles(cmd.Catalog...)
	if err != nil {
		return err
	}

	sess, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer sess.close(ctx)

	limit := cmd.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	// The catalog is read-only after load and the planner keeps no per-call
	// state, so they are shared. Each call gets its own State.
	results := make([]PlanResult, len(cmd.States))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range cmd.States {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			state, err := catalog.LoadState(path)
			if err != nil {
				return err
			}

			plan := sess.planner.Plan(cat.Goals, cat.Actions, state)
			result := newPlanResult(plan)
			result.Source = path

			if plan != nil {
				record := journal.NewRecord(journal.KindPlan, state)
				record.Sources = cat.Sources
				after := state.Clone()
				plan.Apply(after)
				record.AddPlan(plan, after)
				result.RunID = record.ID
				sess.recordPlan(gctx, record.ID, plan)
				if err := sess.saveRun(record); err != nil {
					return err
				}
			}

			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Batch complete", "states", len(cmd.States), "concurrency", limit)

	if cmd.JSON {
		enc := json.NewEncoder(stdout)
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tGOAL\tCOST\tACTIONS")
	for _, r := range results {
		goal := r.Goal
		if !r.Found {
			goal = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%v\n", r.Source, goal, r.Cost, r.Actions)
	}
	return tw.Flush()
}
