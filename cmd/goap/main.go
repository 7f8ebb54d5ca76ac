package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/goap/internal/commands"
)

var CLI struct {
	Plan     commands.PlanCommand     `cmd:"" help:"Plan once against a world state"`
	Simulate commands.SimulateCommand `cmd:"" help:"Plan and execute until no goal is actionable"`
	Batch    commands.BatchCommand    `cmd:"" help:"Plan many world states concurrently"`
	Validate commands.ValidateCommand `cmd:"" help:"Lint goal and action catalogs"`
	Watch    commands.WatchCommand    `cmd:"" help:"Re-plan whenever a catalog changes"`
	History  commands.HistoryCommand  `cmd:"" help:"Inspect recorded runs"`
	Doctor   commands.DoctorCommand   `cmd:"" help:"Run system diagnostics"`
	Config   commands.ConfigCommand   `cmd:"" help:"Manage configuration"`
}

const banner = `
  __ _  ___   __ _ _ __
 / _' |/ _ \ / _' | '_ \
| (_| | (_) | (_| | |_) |
 \__, |\___/ \__,_| .__/
 |___/            |_|

Goal-Oriented Action Planning
`

func main() {
	log.SetLevel(log.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) == 1 {
		fmt.Print(banner + "\n")
		fmt.Println("Quick start:")
		fmt.Println("  $ goap config init                        # Create config file")
		fmt.Println("  $ goap doctor                             # Verify setup")
		fmt.Println("  $ goap validate goals.yaml actions.yaml   # Lint a catalog")
		fmt.Println("  $ goap plan goals.yaml actions.yaml -s state.yaml")
		fmt.Println("  $ goap simulate catalog.toml --set HasAxe=false")
		fmt.Println()
		fmt.Println("Run 'goap --help' for all commands")
		os.Exit(0)
	}

	kctx := kong.Parse(&CLI,
		kong.Name("goap"),
		kong.Description("goap - Goal-Oriented Action Planning\n\nPlan action sequences that reach prioritised goals over boolean world states."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: false,
			Summary: true,
		}),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	err := kctx.Run()
	if err != nil {
		log.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
