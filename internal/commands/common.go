// Package commands holds the kong command structs for the goap CLI.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"upside-down-research.com/oss/goap/internal/catalog"
	"upside-down-research.com/oss/goap/internal/config"
	"upside-down-research.com/oss/goap/internal/goap"
	"upside-down-research.com/oss/goap/internal/journal"
	"upside-down-research.com/oss/goap/internal/o11y"
	"upside-down-research.com/oss/goap/internal/validation"
)

// stdout is where command results go; logs go to stderr.
var stdout io.Writer = os.Stdout

// RuntimeFlags are shared by every command that plans.
type RuntimeFlags struct {
	Config        string `name:"config" help:"Configuration file path" type:"path"`
	LogLevel      string `name:"log-level" help:"Override log level (debug, info, warn, error)"`
	MaxExpansions *int   `name:"max-expansions" help:"Override planner.max_expansions (0 = unbounded)"`
	Journal       string `name:"journal" help:"Override journal directory" type:"path"`
}

// StateFlags select the starting world state.
type StateFlags struct {
	State string   `name:"state" short:"s" help:"World state file (.yaml, .toml, .json)" type:"path"`
	Set   []string `name:"set" help:"Predicate overrides: name=true|false, name, or !name"`
}

// loadConfig loads the configuration, applies flag overrides, validates it
// and configures logging.
func (f *RuntimeFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(f.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.MaxExpansions != nil {
		cfg.Planner.MaxExpansions = *f.MaxExpansions
	}
	if f.Journal != "" {
		cfg.Journal.Directory = f.Journal
	}

	result := validation.ValidateConfig(cfg)
	if !result.IsValid() {
		validation.PrintValidationResult(os.Stderr, result)
		return nil, fmt.Errorf("configuration validation failed")
	}

	if err := setupLogging(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(log.JSONFormatter)
	case "logfmt":
		log.SetFormatter(log.LogfmtFormatter)
	default:
		log.SetFormatter(log.TextFormatter)
	}
	return nil
}

// loadState reads the optional state file and applies --set overrides on top.
func (f *StateFlags) loadState() (goap.State, error) {
	state := goap.NewState()
	if f.State != "" {
		loaded, err := catalog.LoadState(f.State)
		if err != nil {
			return nil, err
		}
		state = loaded
	}

	overrides, err := catalog.ParseAssignments(f.Set)
	if err != nil {
		return nil, err
	}
	state.Apply(overrides)
	return state, nil
}

// session wires a planner to the sinks the configuration enables.
type session struct {
	cfg     *config.Config
	planner *goap.Planner
	metrics *o11y.PlannerMetrics
	influx  *o11y.InfluxRecorder
	journal *journal.Journal
}

func newSession(cfg *config.Config) (*session, error) {
	s := &session{cfg: cfg}

	opts := []goap.Option{goap.WithMaxExpansions(cfg.Planner.MaxExpansions)}
	if cfg.Metrics.Enabled {
		metrics, err := o11y.NewPlannerMetrics(prometheus.NewRegistry())
		if err != nil {
			return nil, err
		}
		s.metrics = metrics
		opts = append(opts, goap.WithObserver(metrics))
	}
	s.planner = goap.NewPlanner(opts...)

	if cfg.Influx.Enabled {
		s.influx = o11y.NewInfluxRecorder(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket)
	}
	if cfg.Journal.Enabled {
		s.journal = journal.New(cfg.Journal.Directory)
	}
	return s, nil
}

// enableJournal turns the journal on for this run, e.g. for --record.
func (s *session) enableJournal() {
	if s.journal == nil {
		s.journal = journal.New(s.cfg.Journal.Directory)
	}
}

// recordPlan sends a plan to InfluxDB. Failures are logged, not returned.
func (s *session) recordPlan(ctx context.Context, runID string, plan *goap.Plan) {
	if s.influx == nil || plan == nil {
		return
	}
	if err := s.influx.RecordPlan(ctx, runID, plan); err != nil {
		log.Warn("Failed to record plan", "run", runID, "error", err)
	}
}

// saveRun writes record to the journal when one is enabled.
func (s *session) saveRun(record *journal.RunRecord) error {
	if s.journal == nil {
		return nil
	}
	if err := s.journal.Save(record); err != nil {
		return err
	}
	log.Info("Run recorded", "run", record.ID, "dir", s.journal.Dir())
	return nil
}

// pushTimeout bounds the final metrics push.
const pushTimeout = 5 * time.Second

// close pushes metrics and releases clients. The push still runs when ctx
// was cancelled by an interrupt.
func (s *session) close(ctx context.Context) {
	if s.metrics != nil {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
		defer cancel()
		if err := s.metrics.Push(pushCtx, s.cfg.Metrics.Pushgateway, s.cfg.Metrics.Job); err != nil {
			log.Warn("Failed to push metrics", "error", err)
		}
	}
	if s.influx != nil {
		s.influx.Close()
	}
}
