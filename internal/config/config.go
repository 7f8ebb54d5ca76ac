package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Planner    PlannerConfig    `yaml:"planner"`
	Simulation SimulationConfig `yaml:"simulation"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Influx     InfluxConfig     `yaml:"influx"`
	Journal    JournalConfig    `yaml:"journal"`
}

// PlannerConfig holds search settings
type PlannerConfig struct {
	MaxExpansions int `yaml:"max_expansions"` // 0 = unbounded
}

// SimulationConfig holds agent loop settings
type SimulationConfig struct {
	MaxSteps int  `yaml:"max_steps"`
	Strict   bool `yaml:"strict"` // fail on unmet preconditions
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json, logfmt
}

// MetricsConfig holds Prometheus pushgateway settings
type MetricsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Pushgateway string `yaml:"pushgateway"`
	Job         string `yaml:"job"`
}

// InfluxConfig holds InfluxDB plan recording settings
type InfluxConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"` // supports ${ENV_VAR} interpolation
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`
}

// JournalConfig holds run journal settings
type JournalConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Directory string `yaml:"directory"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Planner: PlannerConfig{
			MaxExpansions: 10000,
		},
		Simulation: SimulationConfig{
			MaxSteps: 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:     false,
			Pushgateway: "http://localhost:9091",
			Job:         "goap",
		},
		Influx: InfluxConfig{
			Enabled: false,
			URL:     "http://localhost:8086",
			Bucket:  "goap",
		},
		Journal: JournalConfig{
			Enabled:   false,
			Directory: "./output",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the config
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExampleConfig returns a commented example config
func ExampleConfig() string {
	return `# GOAP Planner Configuration File
# Priority: CLI flags > config file > defaults

planner:
  # Stop searching a goal after this many node expansions (0 = unbounded).
  # Catalogs with precondition cycles never finish without a ceiling.
  max_expansions: 10000

simulation:
  # Maximum plan/execute cycles for 'goap simulate'
  max_steps: 20

  # Fail when an action is reached with unmet preconditions
  strict: false

log:
  # Level: debug, info, warn, error
  level: info

  # Format: text, json, logfmt
  format: text

metrics:
  # Push planner metrics to a Prometheus pushgateway after each command
  enabled: false
  pushgateway: http://localhost:9091
  job: goap

influx:
  # Record each plan as an InfluxDB point
  enabled: false
  url: http://localhost:8086

  # Token: supports ${ENV_VAR} interpolation
  token: ${INFLUX_TOKEN}
  org: ""
  bucket: goap

journal:
  # Save plan and simulation runs as JSON for 'goap history'
  enabled: false
  directory: ./output
`
}
