package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"upside-down-research.com/oss/goap/internal/config"
	"upside-down-research.com/oss/goap/internal/goap"
	"upside-down-research.com/oss/goap/internal/journal"
)

// HistoryCommand inspects the run journal
type HistoryCommand struct {
	List HistoryListCommand `cmd:"" help:"List recorded runs" default:"withargs"`
	Show HistoryShowCommand `cmd:"" help:"Show one recorded run"`
}

// JournalFlags locate the run journal.
type JournalFlags struct {
	Config  string `name:"config" help:"Configuration file path" type:"path"`
	Journal string `name:"journal" help:"Override journal directory" type:"path"`
}

func (f *JournalFlags) open() (*journal.Journal, error) {
	cfg, err := config.LoadConfig(f.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	dir := cfg.Journal.Directory
	if f.Journal != "" {
		dir = f.Journal
	}
	return journal.New(dir), nil
}

// HistoryListCommand lists recorded runs
type HistoryListCommand struct {
	JournalFlags `embed:""`
	Limit        int `name:"limit" short:"n" help:"Show only the most recent runs" default:"20"`
}

// Run executes the history list command
func (cmd *HistoryListCommand) Run() error {
	j, err := cmd.open()
	if err != nil {
		return err
	}
	records, err := j.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(stdout, "No runs recorded in %s\n", j.Dir())
		return nil
	}
	if cmd.Limit > 0 && len(records) > cmd.Limit {
		records = records[len(records)-cmd.Limit:]
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tKIND\tCREATED\tSTEPS\tCOST\tGOALS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.Kind, r.CreatedAt.Local().Format(time.DateTime),
			len(r.Steps), r.TotalCost(), strings.Join(goalNames(r), ","))
	}
	return tw.Flush()
}

func goalNames(r *journal.RunRecord) []string {
	names := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		names = append(names, s.Goal)
	}
	return names
}

// HistoryShowCommand prints one recorded run
type HistoryShowCommand struct {
	JournalFlags `embed:""`
	RunID        string `arg:"" name:"run" help:"Run ID"`
	JSON         bool   `name:"json" help:"Print the raw record"`
}

// Run executes the history show command
func (cmd *HistoryShowCommand) Run() error {
	j, err := cmd.open()
	if err != nil {
		return err
	}
	r, err := j.Load(cmd.RunID)
	if err != nil {
		return err
	}

	if cmd.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintf(stdout, "Run:      %s\n", r.ID)
	fmt.Fprintf(stdout, "Kind:     %s\n", r.Kind)
	fmt.Fprintf(stdout, "Created:  %s\n", r.CreatedAt.Local().Format(time.DateTime))
	if len(r.Sources) > 0 {
		fmt.Fprintf(stdout, "Catalog:  %s\n", strings.Join(r.Sources, ", "))
	}
	if r.Stop != "" {
		fmt.Fprintf(stdout, "Stopped:  %s\n", r.Stop)
	}
	fmt.Fprintf(stdout, "Initial:  %s\n", goap.State(r.Initial))
	for i, s := range r.Steps {
		fmt.Fprintf(stdout, "\n%d. %s (cost %d, %d expansions)\n", i+1, s.Goal, s.Cost, s.Expansions)
		fmt.Fprintf(stdout, "   actions: %s\n", strings.Join(s.Actions, " → "))
		fmt.Fprintf(stdout, "   after:   %s\n", goap.State(s.After))
	}
	fmt.Fprintf(stdout, "\nTotal cost: %d\n", r.TotalCost())
	return nil
}
