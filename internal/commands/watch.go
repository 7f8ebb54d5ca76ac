package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/goap/internal/catalog"
	"upside-down-research.com/oss/goap/internal/progress"
	"upside-down-research.com/oss/goap/internal/validation"
)

// WatchCommand re-plans whenever a catalog file changes
type WatchCommand struct {
	RuntimeFlags `embed:""`
	StateFlags   `embed:""`
	Catalog      []string      `arg:"" name:"catalog" help:"Goal and action files to watch"`
	Debounce     time.Duration `name:"debounce" help:"Wait this long after the last change before reloading" default:"200ms"`
}

// Run executes the watch command until interrupted
func (cmd *WatchCommand) Run(ctx context.Context) error {
	cfg, err := cmd.loadConfig()
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

	prog := progress.NewIndicatorTo(stdout, true)
	replan := func(cat *catalog.Catalog, err error) {
		if err != nil {
			prog.Error("reload", err)
			return
		}
		for _, w := range validation.ValidateCatalog(cat).Warnings {
			log.Warn("Catalog lint", "field", w.Field, "message", w.Message)
		}
		prog.Phase(fmt.Sprintf("Plan (%d goals, %d actions)", len(cat.Goals), len(cat.Actions)))
		prog.Plan(sess.planner.Plan(cat.Goals, cat.Actions, state))
	}

	replan(catalog.LoadFiles(cmd.Catalog...))

	return catalog.NewWatcher(cmd.Debounce, cmd.Catalog...).Run(ctx, replan)
}
