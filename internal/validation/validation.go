package validation

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"upside-down-research.com/oss/goap/internal/catalog"
	"upside-down-research.com/oss/goap/internal/config"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
	Fix     string // Suggested fix
}

func (e ValidationError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Field, e.Message)
	if e.Fix != "" {
		msg += fmt.Sprintf("\n  Fix: %s", e.Fix)
	}
	return msg
}

// ValidationResult holds validation results
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// IsValid returns true if there are no errors
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

// AddError adds a validation error
func (v *ValidationResult) AddError(field, message, fix string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
		Fix:     fix,
	})
}

// AddWarning adds a validation warning
func (v *ValidationResult) AddWarning(field, message, fix string) {
	v.Warnings = append(v.Warnings, ValidationError{
		Field:   field,
		Message: message,
		Fix:     fix,
	})
}

// Merge appends another result's errors and warnings
func (v *ValidationResult) Merge(other *ValidationResult) {
	v.Errors = append(v.Errors, other.Errors...)
	v.Warnings = append(v.Warnings, other.Warnings...)
}

var (
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"text": true, "json": true, "logfmt": true}
)

// ValidateConfig validates the configuration
func ValidateConfig(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}

	if cfg.Planner.MaxExpansions < 0 {
		result.AddError("planner.max_expansions",
			"cannot be negative",
			"set planner.max_expansions to a positive number or 0 for unbounded")
	} else if cfg.Planner.MaxExpansions == 0 {
		result.AddWarning("planner.max_expansions",
			"search is unbounded; catalogs with precondition cycles will never return",
			"set planner.max_expansions to e.g. 10000")
	}

	if cfg.Simulation.MaxSteps < 1 {
		result.AddError("simulation.max_steps",
			"must be at least 1",
			"set simulation.max_steps to a positive number")
	}

	if !validLevels[strings.ToLower(cfg.Log.Level)] {
		result.AddError("log.level",
			fmt.Sprintf("invalid level '%s'", cfg.Log.Level),
			"use one of: debug, info, warn, error")
	}
	if !validFormats[strings.ToLower(cfg.Log.Format)] {
		result.AddError("log.format",
			fmt.Sprintf("invalid format '%s'", cfg.Log.Format),
			"use one of: text, json, logfmt")
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Pushgateway == "" {
			result.AddError("metrics.pushgateway",
				"metrics enabled but no pushgateway address",
				"set metrics.pushgateway, e.g. http://localhost:9091")
		}
		if cfg.Metrics.Job == "" {
			result.AddError("metrics.job",
				"metrics enabled but no job name",
				"set metrics.job, e.g. goap")
		}
	}

	if cfg.Influx.Enabled {
		for field, value := range map[string]string{
			"influx.url":    cfg.Influx.URL,
			"influx.org":    cfg.Influx.Org,
			"influx.bucket": cfg.Influx.Bucket,
		} {
			if value == "" {
				result.AddError(field,
					"influx enabled but not set",
					fmt.Sprintf("set %s in config", field))
			}
		}
		if cfg.Influx.Token == "" {
			result.AddWarning("influx.token",
				"no token set",
				"export INFLUX_TOKEN=... and reference it as ${INFLUX_TOKEN}")
		}
	}

	if cfg.Journal.Enabled && cfg.Journal.Directory == "" {
		result.AddError("journal.directory",
			"journal enabled but no directory",
			"set journal.directory in config or use --journal flag")
	}

	return result
}

// ValidateCatalogFiles checks that catalog files exist and are readable
func ValidateCatalogFiles(paths []string) *ValidationResult {
	result := &ValidationResult{}

	if len(paths) == 0 {
		result.AddError("catalog",
			"no catalog files provided",
			"pass goal and action files, e.g. goals.yaml actions.yaml")
		return result
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				result.AddError(path,
					"file not found",
					"check the file path and try again")
			} else {
				result.AddError(path,
					fmt.Sprintf("cannot access file: %v", err),
					"check file permissions")
			}
			continue
		}

		if info.IsDir() {
			result.AddError(path,
				"is a directory",
				"provide a file, not a directory")
			continue
		}

		if _, err := catalog.FormatFor(path); err != nil {
			result.AddError(path,
				"unsupported file extension",
				"use .yaml, .yml, .toml or .json")
			continue
		}

		if info.Size() == 0 {
			result.AddWarning(path,
				"file is empty",
				"add goal or action records")
		}
	}

	return result
}

// ValidateCatalog lints a loaded catalog. It never changes what the planner
// does; warnings point at goals and actions that can silently produce no plan.
func ValidateCatalog(cat *catalog.Catalog) *ValidationResult {
	result := &ValidationResult{}

	if len(cat.Goals) == 0 {
		result.AddError("goal",
			"catalog has no goals",
			"add at least one goal record")
	}
	if len(cat.Actions) == 0 {
		result.AddWarning("action",
			"catalog has no actions",
			"only goals that already hold can be planned")
	}

	seenGoals := make(map[string]bool)
	for _, g := range cat.Goals {
		if seenGoals[g.Name()] {
			result.AddWarning("goal."+g.Name(),
				"duplicate goal name",
				"rename one of the goals")
		}
		seenGoals[g.Name()] = true
	}

	seenActions := make(map[string]bool)
	produced := make(map[string]bool)
	for _, a := range cat.Actions {
		if seenActions[a.Name()] {
			result.AddWarning("action."+a.Name(),
				"duplicate action name; the first definition wins lookups by name",
				"rename one of the actions")
		}
		seenActions[a.Name()] = true
		for name, value := range a.Post() {
			if value {
				produced[name] = true
			}
		}
	}

	required := make(map[string]bool)
	for _, g := range cat.Goals {
		for _, name := range g.DesiredState().Names() {
			required[name] = true
			if g.DesiredState()[name] && !produced[name] {
				result.AddWarning("goal."+g.Name(),
					fmt.Sprintf("predicate %s=true is produced by no action", name),
					"the goal is reachable only if it already holds in the state")
			}
		}
	}

	for _, a := range cat.Actions {
		for _, name := range a.Pre().Names() {
			required[name] = true
			if a.Pre()[name] && !produced[name] {
				result.AddWarning("action."+a.Name(),
					fmt.Sprintf("precondition %s=true is produced by no action", name),
					"the action is usable only if it already holds in the state")
			}
		}
	}

	for _, a := range cat.Actions {
		useful := false
		for name := range a.Post() {
			if required[name] {
				useful = true
				break
			}
		}
		if !useful {
			result.AddWarning("action."+a.Name(),
				"no goal or action requires any of its postconditions",
				"remove the action or reference its effects")
		}
	}

	return result
}

// ValidateOutputDirectory checks if output directory is usable
func ValidateOutputDirectory(path string) error {
	// Try to create directory
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}

	// Try to write a test file
	testFile := filepath.Join(path, ".goap-test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return fmt.Errorf("cannot write to output directory: %w", err)
	}

	// Clean up test file
	os.Remove(testFile)

	return nil
}

// PrintValidationResult prints validation results
func PrintValidationResult(w io.Writer, result *ValidationResult) {
	if len(result.Errors) > 0 {
		fmt.Fprintln(w, "❌ Validation Errors:")
		for _, err := range result.Errors {
			fmt.Fprintf(w, "  • %s\n", err.Error())
		}
		fmt.Fprintln(w)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "⚠️  Warnings:")
		for _, warn := range result.Warnings {
			fmt.Fprintf(w, "  • %s: %s\n", warn.Field, warn.Message)
			if warn.Fix != "" {
				fmt.Fprintf(w, "    Suggestion: %s\n", warn.Fix)
			}
		}
		fmt.Fprintln(w)
	}

	if result.IsValid() && len(result.Warnings) == 0 {
		fmt.Fprintln(w, "✓ All validations passed")
	}
}
