package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario overrides the responder failure probability and rescales every
// agent's influence for one comparative run.
type Scenario struct {
	Name                string  `yaml:"name"`
	Description         string  `yaml:"description,omitempty"`
	FailureProbability  float64 `yaml:"failure_probability"`
	InfluenceMultiplier float64 `yaml:"influence_multiplier"`
}

// Set is an ordered list of scenarios run back to back on one population.
//
// Influence multipliers compound across the scenarios of a set: each one is
// applied on top of the influence left by the previous scenario. Independent
// sets restore every agent's creation-time influence before applying the
// multiplier instead.
type Set struct {
	Name        string     `yaml:"name,omitempty"`
	Description string     `yaml:"description,omitempty"`
	Independent bool       `yaml:"independent,omitempty"`
	Scenarios   []Scenario `yaml:"scenarios"`
}

// Validate checks a single scenario.
func (s Scenario) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("scenario name is required"))
	}
	if p := s.FailureProbability; !(p >= 0 && p <= 1) {
		errs = append(errs, fmt.Errorf("scenario %q: failure probability must be in [0,1], got %g", s.Name, p))
	}
	if s.InfluenceMultiplier < 0 {
		errs = append(errs, fmt.Errorf("scenario %q: influence multiplier must not be negative, got %g", s.Name, s.InfluenceMultiplier))
	}
	return errors.Join(errs...)
}

// Validate checks every scenario of the set and rejects duplicate names.
func (s *Set) Validate() error {
	if len(s.Scenarios) == 0 {
		return errors.New("scenario set is empty")
	}
	var errs []error
	seen := make(map[string]bool, len(s.Scenarios))
	for _, sc := range s.Scenarios {
		if err := sc.Validate(); err != nil {
			errs = append(errs, err)
		}
		if seen[sc.Name] {
			errs = append(errs, fmt.Errorf("duplicate scenario name %q", sc.Name))
		}
		seen[sc.Name] = true
	}
	return errors.Join(errs...)
}

// Load reads a YAML scenario set from disk.
func Load(path string) (*Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario set: %w", err)
	}
	var s Set
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario set: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario set %s: %w", path, err)
	}
	return &s, nil
}

// Resolve returns the built-in set called name, or loads name as a file.
func Resolve(name string) (*Set, error) {
	if s, ok := BuiltIn()[name]; ok {
		return &s, nil
	}
	return Load(name)
}
