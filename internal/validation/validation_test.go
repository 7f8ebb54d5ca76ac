package validation

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"upside-down-research.com/oss/goap/internal/catalog"
	"upside-down-research.com/oss/goap/internal/config"
	"upside-down-research.com/oss/goap/internal/goap"
)

func hasField(list []ValidationError, field string) bool {
	for _, e := range list {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidateConfig(t *testing.T) {
	t.Run("Defaults are valid", func(t *testing.T) {
		result := ValidateConfig(config.DefaultConfig())
		if !result.IsValid() {
			t.Errorf("Default config should be valid, got %v", result.Errors)
		}
	})

	t.Run("Bad values", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Planner.MaxExpansions = -1
		cfg.Simulation.MaxSteps = 0
		cfg.Log.Level = "loud"
		cfg.Log.Format = "xml"
		cfg.Metrics.Enabled = true
		cfg.Metrics.Pushgateway = ""
		cfg.Influx.Enabled = true
		cfg.Influx.Org = ""

		result := ValidateConfig(cfg)
		for _, field := range []string{
			"planner.max_expansions", "simulation.max_steps", "log.level",
			"log.format", "metrics.pushgateway", "influx.org",
		} {
			if !hasField(result.Errors, field) {
				t.Errorf("Expected error for %s", field)
			}
		}
		if !hasField(result.Warnings, "influx.token") {
			t.Error("Expected warning for missing influx token")
		}
	})

	t.Run("Unbounded search warns", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Planner.MaxExpansions = 0

		result := ValidateConfig(cfg)
		if !result.IsValid() {
			t.Errorf("Unbounded search is allowed, got %v", result.Errors)
		}
		if !hasField(result.Warnings, "planner.max_expansions") {
			t.Error("Expected a warning for unbounded search")
		}
	})
}

func TestValidateCatalog(t *testing.T) {
	t.Run("Clean catalog", func(t *testing.T) {
		cat := &catalog.Catalog{
			Goals: []*goap.Goal{goap.NewGoal("GetWood", goap.State{"HasWood": false}, goap.State{"HasWood": true})},
			Actions: []*goap.Action{
				goap.NewAction("ChopTree", goap.State{"HasAxe": true}, goap.State{"HasWood": true}, 1),
				goap.NewAction("GetAxe", nil, goap.State{"HasAxe": true}, 2),
			},
		}

		result := ValidateCatalog(cat)
		if !result.IsValid() || len(result.Warnings) != 0 {
			t.Errorf("Expected no findings, got %v %v", result.Errors, result.Warnings)
		}
	})

	t.Run("Findings", func(t *testing.T) {
		cat := &catalog.Catalog{
			Goals: []*goap.Goal{
				goap.NewGoal("Fly", nil, goap.State{"Flying": true}),
				goap.NewGoal("Fly", nil, goap.State{"Flying": true}),
			},
			Actions: []*goap.Action{
				goap.NewAction("Jump", goap.State{"Wings": true}, goap.State{"Airborne": true}, 1),
				goap.NewAction("Jump", nil, goap.State{"Airborne": true}, 1),
			},
		}

		result := ValidateCatalog(cat)
		if !result.IsValid() {
			t.Errorf("Lint findings should be warnings, got %v", result.Errors)
		}

		var messages []string
		for _, w := range result.Warnings {
			messages = append(messages, w.Field+": "+w.Message)
		}
		joined := strings.Join(messages, "\n")

		for _, want := range []string{
			"goal.Fly: duplicate goal name",
			"action.Jump: duplicate action name",
			"goal.Fly: predicate Flying=true is produced by no action",
			"action.Jump: precondition Wings=true is produced by no action",
			"action.Jump: no goal or action requires any of its postconditions",
		} {
			if !strings.Contains(joined, want) {
				t.Errorf("Missing warning %q in:\n%s", want, joined)
			}
		}
	})

	t.Run("Empty catalog", func(t *testing.T) {
		result := ValidateCatalog(&catalog.Catalog{})
		if result.IsValid() {
			t.Error("A catalog without goals should be an error")
		}
	})
}

func TestValidateCatalogFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "goals.yaml")
	if err := os.WriteFile(good, []byte("goal: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}

	result := ValidateCatalogFiles([]string{good, empty, filepath.Join(dir, "missing.yaml"), dir})
	if len(result.Errors) != 2 {
		t.Errorf("Expected 2 errors (missing, directory), got %v", result.Errors)
	}
	if !hasField(result.Warnings, empty) {
		t.Error("Expected a warning for the empty file")
	}

	if ValidateCatalogFiles(nil).IsValid() {
		t.Error("No files should be an error")
	}
}

func TestPrintValidationResult(t *testing.T) {
	var buf bytes.Buffer
	PrintValidationResult(&buf, &ValidationResult{})
	if !strings.Contains(buf.String(), "All validations passed") {
		t.Errorf("Unexpected output %q", buf.String())
	}

	buf.Reset()
	result := &ValidationResult{}
	result.AddError("log.level", "invalid", "use info")
	PrintValidationResult(&buf, result)
	if !strings.Contains(buf.String(), "Fix: use info") {
		t.Errorf("Unexpected output %q", buf.String())
	}
}
