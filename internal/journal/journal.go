// Package journal keeps an on-disk JSON record of plan and simulation runs.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"upside-down-research.com/oss/goap/internal/goap"
)

var (
	// ErrRunNotFound is returned by Load for an unknown run ID.
	ErrRunNotFound = errors.New("run not found")
	// ErrInvalidRunID is returned for IDs that are not a single path element.
	ErrInvalidRunID = errors.New("invalid run id")
)

const recordFile = "run.json"

// Kind says which command produced a run.
type Kind string

const (
	KindPlan     Kind = "plan"
	KindSimulate Kind = "simulate"
)

// RunRecord is one journaled run.
type RunRecord struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	CreatedAt time.Time       `json:"created_at"`
	Sources   []string        `json:"sources,omitempty"`
	Initial   map[string]bool `json:"initial_state"`
	Steps     []StepRecord    `json:"steps"`
	Stop      string          `json:"stop_reason,omitempty"`
}

// StepRecord stores one plan and the state it left behind.
type StepRecord struct {
	Goal       string          `json:"goal"`
	Actions    []string        `json:"actions"`
	Cost       int64           `json:"cost"`
	Expansions int             `json:"expansions"`
	After      map[string]bool `json:"state_after,omitempty"`
}

// NewRunID returns a fresh random run ID.
func NewRunID() string {
	return uuid.NewString()
}

// NewRecord starts a record for a run beginning in initial.
func NewRecord(kind Kind, initial goap.State) *RunRecord {
	return &RunRecord{
		ID:        NewRunID(),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
		Initial:   initial.Clone(),
		Steps:     []StepRecord{},
	}
}

// AddPlan appends plan with the state it produced. A nil plan is ignored.
func (r *RunRecord) AddPlan(plan *goap.Plan, after goap.State) {
	if plan == nil {
		return
	}
	r.Steps = append(r.Steps, StepRecord{
		Goal:       plan.Goal.Name(),
		Actions:    plan.ActionNames(),
		Cost:       plan.Cost,
		Expansions: plan.Expansions,
		After:      after.Clone(),
	})
}

// TotalCost sums the cost of every step.
func (r *RunRecord) TotalCost() int64 {
	var total int64
	for _, s := range r.Steps {
		total += s.Cost
	}
	return total
}

// Journal stores run records under a base directory, one subdirectory per run.
type Journal struct {
	basePath string
}

func New(basePath string) *Journal {
	return &Journal{basePath: basePath}
}

// Dir returns the journal's base directory.
func (j *Journal) Dir() string {
	return j.basePath
}

// checkRunID keeps run IDs inside the journal directory.
func checkRunID(runID string) error {
	if runID == "" || runID == "." || runID == ".." ||
		strings.ContainsAny(runID, `/\`) || filepath.Base(runID) != runID {
		return fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	return nil
}

// Save writes record to <base>/<id>/run.json, replacing any earlier copy.
func (j *Journal) Save(record *RunRecord) error {
	if err := checkRunID(record.ID); err != nil {
		return err
	}

	runDir := filepath.Join(j.basePath, record.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	path := filepath.Join(runDir, recordFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}

	log.Debug("Run saved", "path", path, "steps", len(record.Steps))
	return nil
}

// Load reads the record for runID.
func (j *Journal) Load(runID string) (*RunRecord, error) {
	if err := checkRunID(runID); err != nil {
		return nil, err
	}
	path := filepath.Join(j.basePath, runID, recordFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", runID, err)
	}
	return &record, nil
}

// List returns every readable run, oldest first. Unreadable run directories
// are logged and skipped. A missing base directory is an empty journal.
func (j *Journal) List() ([]*RunRecord, error) {
	entries, err := os.ReadDir(j.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read journal directory: %w", err)
	}

	var records []*RunRecord
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		record, err := j.Load(entry.Name())
		if err != nil {
			log.Warn("Skipping unreadable run", "run", entry.Name(), "error", err)
			continue
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(a, b int) bool {
		return records[a].CreatedAt.Before(records[b].CreatedAt)
	})
	return records, nil
}
