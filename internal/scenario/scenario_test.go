package scenario

import (
	"math"
	"strings"
	"testing"
)

func TestLoadScenarioSet(t *testing.T) {
	s, err := Load("testdata/simple.yaml")
	if err != nil {
		t.Fatalf("load scenario set: %v", err)
	}
	if s.Name != "example" {
		t.Fatalf("unexpected name %s", s.Name)
	}
	if len(s.Scenarios) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(s.Scenarios))
	}
	if s.Scenarios[0].Name != "calm" || s.Scenarios[1].Name != "storm" {
		t.Fatalf("scenario order not preserved: %+v", s.Scenarios)
	}
	if s.Scenarios[1].FailureProbability != 0.3 || s.Scenarios[1].InfluenceMultiplier != 3 {
		t.Fatalf("unexpected storm scenario %+v", s.Scenarios[1])
	}
}

func TestLoadInvalidScenarioSet(t *testing.T) {
	_, err := Load("testdata/invalid.yaml")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"failure probability", "influence multiplier", "duplicate"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func TestValidateRejectsNaNProbability(t *testing.T) {
	s := Set{Name: "nan", Scenarios: []Scenario{{Name: "broken", FailureProbability: math.NaN(), InfluenceMultiplier: 1}}}
	err := s.Validate()
	if err == nil || !strings.Contains(err.Error(), "failure probability") {
		t.Fatalf("expected failure probability error, got %v", err)
	}
}

func TestValidateEmptySet(t *testing.T) {
	s := Set{}
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for empty set")
	}
}

func TestBuiltInSets(t *testing.T) {
	sets := BuiltIn()
	cmp, ok := sets[DefaultSet]
	if !ok {
		t.Fatalf("default set %s not found", DefaultSet)
	}
	want := []struct {
		name string
		prob float64
		mult float64
	}{
		{"Low virality", 0.005, 0.5},
		{"Normal virality", 0.01, 1.0},
		{"High virality", 0.02, 2.0},
		{"Viral crisis", 0.05, 5.0},
	}
	if len(cmp.Scenarios) != len(want) {
		t.Fatalf("expected %d scenarios, got %d", len(want), len(cmp.Scenarios))
	}
	for i, w := range want {
		got := cmp.Scenarios[i]
		if got.Name != w.name || got.FailureProbability != w.prob || got.InfluenceMultiplier != w.mult {
			t.Fatalf("scenario %d = %+v, want %+v", i, got, w)
		}
	}
	if cmp.Independent {
		t.Fatalf("default comparison must compound influence")
	}
	for name, s := range sets {
		if err := s.Validate(); err != nil {
			t.Errorf("built-in set %s invalid: %v", name, err)
		}
		if s.Description == "" {
			t.Errorf("built-in set %s missing description", name)
		}
	}
}

func TestResolve(t *testing.T) {
	s, err := Resolve("reliability")
	if err != nil || s.Name != "Reliability" {
		t.Fatalf("Resolve built-in: %v %+v", err, s)
	}
	s, err = Resolve("testdata/simple.yaml")
	if err != nil || s.Name != "example" {
		t.Fatalf("Resolve file: %v %+v", err, s)
	}
	if _, err := Resolve("testdata/missing.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
