package sim

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"viralsim/internal/agent"
	"viralsim/internal/config"
	"viralsim/internal/metrics"
	"viralsim/internal/scenario"
	"viralsim/internal/telemetry"
)

// MockWriter collects metrics, event and summary rows for validation
type MockWriter struct {
	Rows      []telemetry.MetricsRow
	Events    []telemetry.ViralEventRow
	Summaries []telemetry.SummaryRow
}

func (w *MockWriter) Write(row telemetry.MetricsRow) error {
	w.Rows = append(w.Rows, row)
	return nil
}

func (w *MockWriter) WriteEvent(e telemetry.ViralEventRow) error {
	w.Events = append(w.Events, e)
	return nil
}

func (w *MockWriter) WriteSummary(row telemetry.SummaryRow) error {
	w.Summaries = append(w.Summaries, row)
	return nil
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(telemetry.MetricsRow) error {
	w.calls++
	return errors.New("sink down")
}

func testConfig(population, ticks, capacity int, failureProb float64) *config.SimulationConfig {
	cfg := config.Default()
	cfg.Population = population
	cfg.Ticks = ticks
	cfg.Seed = 42
	cfg.Responder.MaxCapacity = capacity
	cfg.Responder.FailureProbability = failureProb
	return cfg
}

func fixedClock() time.Time { return time.Unix(1_700_000_000, 0).UTC() }

func newTestSimulator(t *testing.T, cfg *config.SimulationConfig, w *MockWriter) *Simulator {
	t.Helper()
	var tw TelemetryWriter
	var ew EventWriter
	if w != nil {
		tw, ew = w, w
	}
	s, err := NewSimulator(cfg, tw, ew, fixedClock)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	return s
}

func TestNewSimulatorRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.SimulationConfig)
	}{
		{"empty population", func(c *config.SimulationConfig) { c.Population = 0 }},
		{"no ticks", func(c *config.SimulationConfig) { c.Ticks = 0 }},
		{"zero capacity", func(c *config.SimulationConfig) { c.Responder.MaxCapacity = 0 }},
		{"probability above one", func(c *config.SimulationConfig) { c.Responder.FailureProbability = 1.5 }},
		{"NaN probability", func(c *config.SimulationConfig) { c.Responder.FailureProbability = math.NaN() }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(cfg)
			if _, err := NewSimulator(cfg, nil, nil, fixedClock); !errors.Is(err, config.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
	if _, err := NewSimulator(nil, nil, nil, nil); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("nil config: expected ErrInvalidConfig, got %v", err)
	}
}

func TestRunRecordsEveryTick(t *testing.T) {
	w := &MockWriter{}
	s := newTestSimulator(t, testConfig(1000, 100, 100, 0.01), w)
	s.Run(context.Background())

	if got := len(s.Snapshots()); got != 100 {
		t.Fatalf("snapshots = %d, want 100", got)
	}
	for _, name := range metrics.Names {
		values, err := s.Series(name)
		if err != nil {
			t.Fatalf("Series(%s): %v", name, err)
		}
		if len(values) != 100 {
			t.Fatalf("%s has %d values, want 100", name, len(values))
		}
	}
	if len(w.Rows) != 100 {
		t.Fatalf("writer got %d rows, want 100", len(w.Rows))
	}
	for i, row := range w.Rows {
		if row.Tick != i {
			t.Fatalf("row %d has tick %d", i, row.Tick)
		}
		if row.RunID != s.RunID() || row.Scenario != baselineScenario {
			t.Fatalf("row %d mislabelled: %+v", i, row)
		}
		if want := fixedClock().Add(time.Duration(i) * time.Second); !row.Timestamp.Equal(want) {
			t.Fatalf("row %d ts = %s, want %s", i, row.Timestamp, want)
		}
	}
	if len(w.Summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(w.Summaries))
	}
	if w.Summaries[0] != s.Summary() {
		t.Fatalf("written summary differs from Summary()")
	}
	if len(w.Events) != s.Summary().TotalEvents {
		t.Fatalf("event rows = %d, summary total = %d", len(w.Events), s.Summary().TotalEvents)
	}
}

func TestRunDeterministic(t *testing.T) {
	a := newTestSimulator(t, testConfig(1000, 100, 100, 0.01), nil)
	b := newTestSimulator(t, testConfig(1000, 100, 100, 0.01), nil)
	a.Run(context.Background())
	b.Run(context.Background())

	if !reflect.DeepEqual(a.Snapshots(), b.Snapshots()) {
		t.Fatalf("metrics differ between runs with the same seed")
	}
	if !reflect.DeepEqual(a.Events(), b.Events()) {
		t.Fatalf("event logs differ between runs with the same seed")
	}
}

func TestRunInvariants(t *testing.T) {
	cfg := testConfig(500, 80, 20, 0.2)
	s := newTestSimulator(t, cfg, nil)
	s.Run(context.Background())

	prevFailures := 0
	for _, snap := range s.Snapshots() {
		if snap.SystemLoad < 0 || snap.SystemLoad > 1 {
			t.Fatalf("tick %d: load %f out of range", snap.Tick, snap.SystemLoad)
		}
		if snap.Perception < 0 || snap.Perception > 1 {
			t.Fatalf("tick %d: perception %f out of range", snap.Tick, snap.Perception)
		}
		if snap.CumulativeFailures < prevFailures {
			t.Fatalf("tick %d: failures decreased %d -> %d", snap.Tick, prevFailures, snap.CumulativeFailures)
		}
		prevFailures = snap.CumulativeFailures
		if snap.ActiveAgents+snap.AwareAgents > cfg.Population {
			t.Fatalf("tick %d: %d active + %d aware exceeds population", snap.Tick, snap.ActiveAgents, snap.AwareAgents)
		}
		if snap.ResponseTime < cfg.Responder.BaseResponseTime || snap.ResponseTime > 2*cfg.Responder.BaseResponseTime {
			t.Fatalf("tick %d: response time %f out of range", snap.Tick, snap.ResponseTime)
		}
	}
	if got := s.Responder().TotalFailures; got != prevFailures {
		t.Fatalf("responder failures %d, last snapshot %d", got, prevFailures)
	}
	reported := 0
	for _, a := range s.Population() {
		reported += a.ReportedFailures
	}
	if reported != prevFailures {
		t.Fatalf("agents reported %d failures, responder counted %d", reported, prevFailures)
	}
	if len(s.Population()) != cfg.Population {
		t.Fatalf("population changed size")
	}
}

func TestRunWithoutFailures(t *testing.T) {
	s := newTestSimulator(t, testConfig(300, 50, 100, 0), nil)
	s.Run(context.Background())

	if len(s.Events()) != 0 {
		t.Fatalf("expected no events, got %d", len(s.Events()))
	}
	for _, snap := range s.Snapshots() {
		if snap.CumulativeFailures != 0 || snap.ActiveAgents != 0 {
			t.Fatalf("tick %d: unexpected failures %+v", snap.Tick, snap)
		}
		if snap.Perception != 1 {
			t.Fatalf("tick %d: perception %f, want 1", snap.Tick, snap.Perception)
		}
	}
}

func TestRunSingleAgentAtCapacityOne(t *testing.T) {
	cfg := testConfig(1, 30, 1, 1)
	s := newTestSimulator(t, cfg, nil)
	s.Run(context.Background())

	for _, snap := range s.Snapshots() {
		if snap.SystemLoad != 0 && snap.SystemLoad != 1 {
			t.Fatalf("tick %d: load %f, want 0 or 1", snap.Tick, snap.SystemLoad)
		}
		if snap.ResponseTime != 1 && snap.ResponseTime != 2 {
			t.Fatalf("tick %d: response time %f, want 1 or 2", snap.Tick, snap.ResponseTime)
		}
	}
	if len(s.Events()) != 0 {
		t.Fatalf("a lone agent cannot spread, got %d events", len(s.Events()))
	}
}

func TestSinkErrorsDoNotAbortRun(t *testing.T) {
	w := &failingWriter{}
	s, err := NewSimulator(testConfig(100, 20, 10, 0.1), w, nil, fixedClock)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	s.Run(context.Background())
	if w.calls != 20 {
		t.Fatalf("writer called %d times, want 20", w.calls)
	}
	if len(s.Snapshots()) != 20 {
		t.Fatalf("run stopped early: %d snapshots", len(s.Snapshots()))
	}
}

func TestResetRestoresPreRunState(t *testing.T) {
	s := newTestSimulator(t, testConfig(200, 40, 10, 0.3), nil)
	before := s.Population()
	s.Run(context.Background())
	s.Reset()

	if len(s.Snapshots()) != 0 || len(s.Events()) != 0 {
		t.Fatalf("metrics or events survived reset")
	}
	r := s.Responder()
	if r.TotalFailures != 0 || r.CurrentLoad != 0 || r.FailureProbability != 0.3 {
		t.Fatalf("unexpected responder after reset: %+v", r)
	}
	for i, a := range s.Population() {
		if a.Awareness != agent.Dormant || a.TotalInteractions != 0 || a.ReportedFailures != 0 || a.LastInteractionTick != 0 {
			t.Fatalf("agent %d not reset: %+v", a.ID, a)
		}
		if a.Influence != before[i].Influence || a.Archetype != before[i].Archetype {
			t.Fatalf("agent %d parameters changed by reset", a.ID)
		}
	}
}

func TestRunAgainResetsFirst(t *testing.T) {
	w := &MockWriter{}
	s := newTestSimulator(t, testConfig(200, 25, 10, 0.2), w)
	s.Run(context.Background())
	first := s.RunID()
	s.Run(context.Background())

	if len(s.Snapshots()) != 25 {
		t.Fatalf("second run has %d snapshots, want 25", len(s.Snapshots()))
	}
	if s.RunID() == first {
		t.Fatalf("second run reused run id")
	}
	if len(w.Summaries) != 2 {
		t.Fatalf("summaries = %d, want 2", len(w.Summaries))
	}
}

func TestEventLogLimit(t *testing.T) {
	cfg := testConfig(1000, 60, 50, 0.5)
	cfg.EventLogLimit = 5
	w := &MockWriter{}
	s := newTestSimulator(t, cfg, w)
	s.Run(context.Background())

	total := s.Summary().TotalEvents
	if total <= 5 {
		t.Skipf("too few events (%d) to exercise the limit", total)
	}
	if len(s.Events()) != 5 {
		t.Fatalf("retained %d events, want 5", len(s.Events()))
	}
	if len(w.Events) != total {
		t.Fatalf("sink got %d events, want all %d", len(w.Events), total)
	}
	sum := s.Summary()
	if sum.EventsNormal+sum.EventsCritical+sum.EventsInfluencer != total {
		t.Fatalf("archetype counts do not add up to %d: %+v", total, sum)
	}
}

func TestRunScenarios(t *testing.T) {
	set := &scenario.Set{
		Name: "test",
		Scenarios: []scenario.Scenario{
			{Name: "double", FailureProbability: 0, InfluenceMultiplier: 2},
			{Name: "triple", FailureProbability: 0.05, InfluenceMultiplier: 3},
		},
	}

	cases := []struct {
		name        string
		independent bool
		factor      float64
	}{
		{"compounding", false, 6},
		{"independent", true, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := &MockWriter{}
			s := newTestSimulator(t, testConfig(200, 20, 20, 0.01), w)
			set.Independent = tc.independent

			results, err := s.RunScenarios(context.Background(), set)
			if err != nil {
				t.Fatalf("RunScenarios: %v", err)
			}
			if len(results) != 2 {
				t.Fatalf("results = %d, want 2", len(results))
			}
			for i, r := range results {
				want := set.Scenarios[i]
				if r.Scenario != want.Name || r.FailureProbability != want.FailureProbability || r.InfluenceMultiplier != want.InfluenceMultiplier {
					t.Fatalf("result %d = %+v, want scenario %+v", i, r, want)
				}
				if r.Ticks != 20 {
					t.Fatalf("result %d covers %d ticks", i, r.Ticks)
				}
			}
			if results[0].FinalFailures != 0 {
				t.Fatalf("zero-probability scenario failed %d times", results[0].FinalFailures)
			}
			if results[0].RunID == results[1].RunID {
				t.Fatalf("scenarios share a run id")
			}
			if len(w.Summaries) != 2 {
				t.Fatalf("summary rows = %d, want 2", len(w.Summaries))
			}

			for _, a := range s.Population() {
				if diff := a.Influence - a.BaseInfluence*tc.factor; diff > 1e-9 || diff < -1e-9 {
					t.Fatalf("agent %d influence %f, want %f", a.ID, a.Influence, a.BaseInfluence*tc.factor)
				}
				if a.Awareness != agent.Dormant {
					t.Fatalf("agent %d not reset after scenarios", a.ID)
				}
			}
			if len(s.Snapshots()) != 0 {
				t.Fatalf("metrics not cleared after scenarios")
			}
		})
	}
}

func TestRunScenariosRejectsInvalidSet(t *testing.T) {
	s := newTestSimulator(t, testConfig(10, 5, 5, 0.1), nil)
	for _, set := range []*scenario.Set{
		nil,
		{Name: "empty"},
		{Name: "bad", Scenarios: []scenario.Scenario{{Name: "neg", FailureProbability: -1, InfluenceMultiplier: 1}}},
		{Name: "nan", Scenarios: []scenario.Scenario{{Name: "nan", FailureProbability: math.NaN(), InfluenceMultiplier: 1}}},
	} {
		if _, err := s.RunScenarios(context.Background(), set); !errors.Is(err, config.ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	}
}
