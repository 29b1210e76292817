// YAML config loader with CUE validation integration
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"viralsim/internal/scenario"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Responder configures the automated service under load.
type Responder struct {
	MaxCapacity        int     `yaml:"max_capacity"`
	BaseResponseTime   float64 `yaml:"base_response_time"`
	FailureProbability float64 `yaml:"failure_probability"`
}

// SimulationConfig is the root configuration for one simulation population.
type SimulationConfig struct {
	Population int   `yaml:"population"`
	Ticks      int   `yaml:"ticks"`
	Seed       int64 `yaml:"seed"`
	// TickDuration is the nominal wall-clock length of a tick used to
	// timestamp output rows. It does not pace the run.
	TickDuration  time.Duration       `yaml:"tick_duration"`
	EventLogLimit int                 `yaml:"event_log_limit"`
	Responder     Responder           `yaml:"responder"`
	Scenarios     []scenario.Scenario `yaml:"scenarios,omitempty"`
}

// Default returns the baseline configuration: 1000 users, a responder with
// capacity 100 failing 1% of interactions, 100 ticks.
func Default() *SimulationConfig {
	return &SimulationConfig{
		Population:   1000,
		Ticks:        100,
		TickDuration: time.Second,
		Responder: Responder{
			MaxCapacity:        100,
			BaseResponseTime:   1.0,
			FailureProbability: 0.01,
		},
	}
}

// Validate reports every out-of-range setting, each wrapping ErrInvalidConfig.
func (c *SimulationConfig) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}
	if c.Population <= 0 {
		bad("population must be positive, got %d", c.Population)
	}
	if c.Ticks <= 0 {
		bad("ticks must be positive, got %d", c.Ticks)
	}
	if c.TickDuration < 0 {
		bad("tick_duration must not be negative, got %s", c.TickDuration)
	}
	if c.EventLogLimit < 0 {
		bad("event_log_limit must not be negative, got %d", c.EventLogLimit)
	}
	if c.Responder.MaxCapacity <= 0 {
		bad("responder.max_capacity must be positive, got %d", c.Responder.MaxCapacity)
	}
	if c.Responder.BaseResponseTime <= 0 {
		bad("responder.base_response_time must be positive, got %g", c.Responder.BaseResponseTime)
	}
	if p := c.Responder.FailureProbability; !(p >= 0 && p <= 1) {
		bad("responder.failure_probability must be in [0,1], got %g", p)
	}
	if len(c.Scenarios) > 0 {
		set := scenario.Set{Scenarios: c.Scenarios}
		if err := set.Validate(); err != nil {
			bad("scenarios: %v", err)
		}
	}
	return errors.Join(errs...)
}

// ScenarioSet returns the scenarios declared in the file, if any.
func (c *SimulationConfig) ScenarioSet() (*scenario.Set, bool) {
	if len(c.Scenarios) == 0 {
		return nil, false
	}
	return &scenario.Set{Name: "config", Scenarios: c.Scenarios}, true
}

// Load reads a YAML config, validates it against the CUE schema at
// cueSchemaPath (the embedded schema when empty) and applies it over Default.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal YAML config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("loaded configuration", "path", configPath, "config", fmt.Sprintf("%+v", *cfg))

	return cfg, nil
}
