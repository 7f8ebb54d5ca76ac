package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Empty path uses defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Planner.MaxExpansions != 10000 {
			t.Errorf("Expected default max_expansions 10000, got %d", cfg.Planner.MaxExpansions)
		}
	})

	t.Run("Missing file uses defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Simulation.MaxSteps != 20 {
			t.Errorf("Expected default max_steps 20, got %d", cfg.Simulation.MaxSteps)
		}
	})

	t.Run("Overrides and env expansion", func(t *testing.T) {
		t.Setenv("GOAP_TEST_TOKEN", "secret")

		path := filepath.Join(t.TempDir(), "goap.yaml")
		content := "planner:\n  max_expansions: 5\ninflux:\n  token: ${GOAP_TEST_TOKEN}\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Planner.MaxExpansions != 5 {
			t.Errorf("Expected 5, got %d", cfg.Planner.MaxExpansions)
		}
		if cfg.Influx.Token != "secret" {
			t.Errorf("Expected expanded token, got %q", cfg.Influx.Token)
		}
		if cfg.Log.Level != "info" {
			t.Errorf("Unset fields should keep defaults, got %q", cfg.Log.Level)
		}
	})

	t.Run("Malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("planner: [\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("Expected parse error")
		}
	})
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "goap.yaml")

	cfg := DefaultConfig()
	cfg.Journal.Enabled = true
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !loaded.Journal.Enabled {
		t.Error("Journal.Enabled should round-trip")
	}
}

func TestExampleConfigParses(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(ExampleConfig()), &cfg); err != nil {
		t.Fatalf("Example config should be valid YAML: %v", err)
	}
	if cfg.Planner.MaxExpansions != DefaultConfig().Planner.MaxExpansions {
		t.Errorf("Example and default max_expansions disagree: %d", cfg.Planner.MaxExpansions)
	}
}
