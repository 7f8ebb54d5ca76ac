package commands

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"upside-down-research.com/oss/goap/internal/catalog"
	"upside-down-research.com/oss/goap/internal/config"
	"upside-down-research.com/oss/goap/internal/o11y"
	"upside-down-research.com/oss/goap/internal/validation"
)

// DoctorCommand runs system diagnostics
type DoctorCommand struct {
	Config  string        `name:"config" help:"Configuration file path" type:"path"`
	Catalog []string      `arg:"" optional:"" name:"catalog" help:"Catalog files to check as well"`
	Timeout time.Duration `name:"timeout" help:"Timeout for each remote check" default:"3s"`
}

// Run executes the doctor command
func (cmd *DoctorCommand) Run(ctx context.Context) error {
	fmt.Fprintln(stdout, "🏥 Running goap diagnostics...")
	fmt.Fprintln(stdout)

	allOk := true

	cfg, err := config.LoadConfig(cmd.Config)
	if err != nil {
		fmt.Fprintf(stdout, "❌ Config: %v\n", err)
		allOk = false
	} else {
		result := validation.ValidateConfig(cfg)
		if result.IsValid() {
			fmt.Fprintln(stdout, "✓ Configuration: valid")
		} else {
			fmt.Fprintln(stdout, "❌ Configuration: has errors")
			for _, e := range result.Errors {
				fmt.Fprintf(stdout, "  • %s\n", e.Error())
			}
			allOk = false
		}
		if len(result.Warnings) > 0 {
			fmt.Fprintln(stdout, "⚠️  Configuration: has warnings")
			for _, w := range result.Warnings {
				fmt.Fprintf(stdout, "  • %s: %s\n", w.Field, w.Message)
			}
		}
	}

	if cfg != nil && cfg.Journal.Enabled {
		if err := validation.ValidateOutputDirectory(cfg.Journal.Directory); err == nil {
			fmt.Fprintf(stdout, "✓ Journal directory: %s (writable)\n", cfg.Journal.Directory)
		} else {
			fmt.Fprintf(stdout, "❌ Journal directory: %v\n", err)
			allOk = false
		}
	}

	if cfg != nil && cfg.Metrics.Enabled {
		if err := checkPushgateway(ctx, cfg.Metrics.Pushgateway, cmd.Timeout); err == nil {
			fmt.Fprintf(stdout, "✓ Pushgateway: %s reachable\n", cfg.Metrics.Pushgateway)
		} else {
			fmt.Fprintf(stdout, "⚠️  Pushgateway: %v\n", err)
			fmt.Fprintln(stdout, "  Note: metrics will be dropped until it is reachable")
		}
	}

	if cfg != nil && cfg.Influx.Enabled {
		rec := o11y.NewInfluxRecorder(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket)
		pingCtx, cancel := context.WithTimeout(ctx, cmd.Timeout)
		err := rec.Ping(pingCtx)
		cancel()
		rec.Close()
		if err == nil {
			fmt.Fprintf(stdout, "✓ InfluxDB: %s reachable\n", cfg.Influx.URL)
		} else {
			fmt.Fprintf(stdout, "⚠️  InfluxDB: %v\n", err)
		}
	}

	if len(cmd.Catalog) > 0 {
		result := validation.ValidateCatalogFiles(cmd.Catalog)
		if result.IsValid() {
			cat, err := catalog.LoadFiles(cmd.Catalog...)
			if err != nil {
				result.AddError("catalog", err.Error(), "run 'goap validate' for details")
			} else {
				result.Merge(validation.ValidateCatalog(cat))
			}
		}
		if result.IsValid() {
			fmt.Fprintf(stdout, "✓ Catalog: %d files load (%d warnings)\n", len(cmd.Catalog), len(result.Warnings))
		} else {
			fmt.Fprintln(stdout, "❌ Catalog: has errors")
			for _, e := range result.Errors {
				fmt.Fprintf(stdout, "  • %s\n", e.Error())
			}
			allOk = false
		}
	}

	fmt.Fprintln(stdout)
	if allOk {
		fmt.Fprintln(stdout, "🎉 All systems ready!")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some issues found - please fix before running")
	return fmt.Errorf("validation failed")
}

func checkPushgateway(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(url, "/")+"/-/healthy", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: %s", resp.Status)
	}
	return nil
}
