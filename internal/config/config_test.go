package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Valid(t *testing.T) {
	cfg, err := Load("testdata/valid.yaml", "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Population != 500 || cfg.Ticks != 50 || cfg.Seed != 42 {
		t.Errorf("unexpected top-level values: %+v", cfg)
	}
	if cfg.TickDuration != 500*time.Millisecond {
		t.Errorf("tick duration = %s", cfg.TickDuration)
	}
	if cfg.Responder.MaxCapacity != 50 || cfg.Responder.BaseResponseTime != 0.8 || cfg.Responder.FailureProbability != 0.02 {
		t.Errorf("unexpected responder: %+v", cfg.Responder)
	}
	set, ok := cfg.ScenarioSet()
	if !ok || len(set.Scenarios) != 1 || set.Scenarios[0].Name != "calm" {
		t.Errorf("unexpected scenarios: %+v", cfg.Scenarios)
	}
}

func TestLoadConfig_DefaultsFillGaps(t *testing.T) {
	cfg, err := Load("testdata/partial.yaml", "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	def := Default()
	if cfg.Population != def.Population || cfg.Responder.MaxCapacity != def.Responder.MaxCapacity {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Ticks != 20 || cfg.Responder.FailureProbability != 0 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if _, ok := cfg.ScenarioSet(); ok {
		t.Errorf("expected no scenarios")
	}
}

func TestLoadConfig_SchemaRejects(t *testing.T) {
	for _, path := range []string{"testdata/out_of_range.yaml", "testdata/unknown_field.yaml"} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := Load(path, "")
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadConfig_SchemaFile(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "strict.cue")
	if err := os.WriteFile(schema, []byte("#Simulation: {population?: int & <100, ...}\n"), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	if _, err := Load("testdata/valid.yaml", schema); err == nil {
		t.Fatalf("expected custom schema to reject population 500")
	}
	if _, err := Load("testdata/valid.yaml", filepath.Join(dir, "missing.cue")); err == nil {
		t.Fatalf("expected error for missing schema")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SimulationConfig)
		field  string
	}{
		{"population", func(c *SimulationConfig) { c.Population = 0 }, "population"},
		{"ticks", func(c *SimulationConfig) { c.Ticks = -1 }, "ticks"},
		{"capacity", func(c *SimulationConfig) { c.Responder.MaxCapacity = 0 }, "max_capacity"},
		{"base time", func(c *SimulationConfig) { c.Responder.BaseResponseTime = 0 }, "base_response_time"},
		{"probability", func(c *SimulationConfig) { c.Responder.FailureProbability = -0.5 }, "failure_probability"},
		{"NaN probability", func(c *SimulationConfig) { c.Responder.FailureProbability = math.NaN() }, "failure_probability"},
		{"event limit", func(c *SimulationConfig) { c.EventLogLimit = -2 }, "event_log_limit"},
		{"tick duration", func(c *SimulationConfig) { c.TickDuration = -time.Second }, "tick_duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("error does not wrap ErrInvalidConfig: %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Fatalf("error %q does not name %s", err, tt.field)
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
