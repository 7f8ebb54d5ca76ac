package commands

import (
	"fmt"
	"os"

	"upside-down-research.com/oss/goap/internal/config"
)

// ConfigCommand manages configuration
type ConfigCommand struct {
	Init ConfigInitCommand `cmd:"" help:"Create a new configuration file"`
}

// ConfigInitCommand creates a new config file
type ConfigInitCommand struct {
	Output string `name:"output" help:"Output path for config file" default:"goap.yaml"`
	Force  bool   `name:"force" help:"Overwrite existing file"`
}

// Run executes the config init command
func (cmd *ConfigInitCommand) Run() error {
	if _, err := os.Stat(cmd.Output); err == nil && !cmd.Force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cmd.Output)
	}

	err := os.WriteFile(cmd.Output, []byte(config.ExampleConfig()), 0644)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(stdout, "✓ Created configuration file: %s\n", cmd.Output)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Next steps:")
	fmt.Fprintln(stdout, "  1. Adjust planner.max_expansions and enable the sinks you need")
	fmt.Fprintln(stdout, "  2. Run 'goap doctor' to verify configuration")
	fmt.Fprintln(stdout, "  3. Run 'goap plan <catalog-files>' to plan")

	return nil
}
