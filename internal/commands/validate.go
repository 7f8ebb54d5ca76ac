package commands

import (
	"fmt"

	"upside-down-research.com/oss/goap/internal/catalog"
	"upside-down-research.com/oss/goap/internal/validation"
)

// ValidateCommand lints goal and action catalogs
type ValidateCommand struct {
	Catalog []string `arg:"" name:"catalog" help:"Goal and action files to validate"`
	Strict  bool     `name:"strict" help:"Treat warnings as errors"`
}

// Run executes the validate command
func (cmd *ValidateCommand) Run() error {
	fmt.Fprintf(stdout, "📋 Validating catalog: %v\n\n", cmd.Catalog)

	result := validation.ValidateCatalogFiles(cmd.Catalog)
	if result.IsValid() {
		cat, err := catalog.LoadFiles(cmd.Catalog...)
		if err != nil {
			result.AddError("catalog", err.Error(), "fix the file and run validate again")
		} else {
			fmt.Fprintf(stdout, "Loaded %d goals and %d actions\n\n", len(cat.Goals), len(cat.Actions))
			result.Merge(validation.ValidateCatalog(cat))
		}
	}
	validation.PrintValidationResult(stdout, result)

	if !result.IsValid() {
		return fmt.Errorf("validation failed")
	}
	if cmd.Strict && len(result.Warnings) > 0 {
		return fmt.Errorf("validation found %d warnings", len(result.Warnings))
	}
	return nil
}
