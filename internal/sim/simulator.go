// Simulator driving the population, responder and awareness spread
package sim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"viralsim/internal/agent"
	"viralsim/internal/config"
	"viralsim/internal/metrics"
	"viralsim/internal/propagation"
	"viralsim/internal/responder"
	"viralsim/internal/scenario"
	"viralsim/internal/telemetry"
)

// TelemetryWriter is an interface to support different output writers.
type TelemetryWriter interface {
	Write(telemetry.MetricsRow) error
}

// Optional: Writers can also support batch mode
type batchWriter interface {
	WriteBatch([]telemetry.MetricsRow) error
}

const (
	// initialAware agents are made aware before the first tick.
	initialAware = 10
	// reportingDecay is the per-tick chance a reporting agent calms down to aware.
	reportingDecay = 0.10
	// activationInterval is the tick period of network-effect activation.
	activationInterval = 5
	// activationScale and maxActivation bound the network-effect probability
	// min(maxActivation, reporting/activationScale).
	activationScale = 1000.0
	maxActivation   = 0.10

	baselineScenario = "baseline"
)

// Simulator owns one population, one responder and the results of the
// current run. It is not safe for concurrent use.
type Simulator struct {
	cfg       config.SimulationConfig
	seed      int64
	rand      *rand.Rand
	responder *responder.Responder
	agents    []*agent.Agent
	series    *metrics.Series
	events    *propagation.Log
	pending   []propagation.Event

	tick      int
	ran       bool
	runID     string
	startedAt time.Time
	scenario  *scenario.Scenario
	summary   telemetry.SummaryRow

	writer      TelemetryWriter
	eventWriter EventWriter
	now         func() time.Time
}

// NewSimulator validates cfg and builds the population. A zero seed is
// replaced by one derived from the clock; Seed reports the value in use.
// writer and eWriter may be nil. now defaults to time.Now.
func NewSimulator(cfg *config.SimulationConfig, writer TelemetryWriter, eWriter EventWriter, now func() time.Time) (*Simulator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil configuration", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	r, err := responder.New(cfg.Responder.MaxCapacity, cfg.Responder.BaseResponseTime, cfg.Responder.FailureProbability)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	agents, err := agent.NewPopulation(cfg.Population, rng)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	return &Simulator{
		cfg:         *cfg,
		seed:        seed,
		rand:        rng,
		responder:   r,
		agents:      agents,
		series:      metrics.NewSeries(),
		events:      propagation.NewLog(cfg.EventLogLimit),
		writer:      writer,
		eventWriter: eWriter,
		now:         now,
	}, nil
}

// Seed returns the random seed in use.
func (s *Simulator) Seed() int64 { return s.seed }

// RunID identifies the current or most recent run. Empty before the first run.
func (s *Simulator) RunID() string { return s.runID }

// Config returns a copy of the configuration the simulator was built with.
func (s *Simulator) Config() config.SimulationConfig { return s.cfg }

// Population returns copies of every agent in population order.
func (s *Simulator) Population() []agent.Agent {
	out := make([]agent.Agent, len(s.agents))
	for i, a := range s.agents {
		out[i] = *a
	}
	return out
}

// Responder returns a copy of the responder state.
func (s *Simulator) Responder() responder.Responder { return *s.responder }

// Snapshots returns the per-tick metrics of the current run.
func (s *Simulator) Snapshots() []metrics.Snapshot { return s.series.Snapshots() }

// Series returns one metric's values indexed by tick.
func (s *Simulator) Series(name string) ([]float64, error) { return s.series.Values(name) }

// Events returns the retained viralization events of the current run.
func (s *Simulator) Events() []propagation.Event { return s.events.Events() }

// EventsByArchetype counts every event of the current run by source archetype.
func (s *Simulator) EventsByArchetype() map[agent.Archetype]int { return s.events.ByArchetype() }

// Summary returns the summary of the most recent completed run.
func (s *Simulator) Summary() telemetry.SummaryRow { return s.summary }

// Reset restores the simulator to its pre-run state. Agents keep their
// behavioural parameters, including any rescaled influence; the responder
// keeps its configuration.
func (s *Simulator) Reset() {
	s.tick = 0
	s.responder.Reset()
	for _, a := range s.agents {
		a.Reset()
	}
	s.series.Reset()
	s.events.Reset()
	s.pending = nil
	s.ran = false
	s.runID = ""
}

func (s *Simulator) scenarioName() string {
	if s.scenario == nil {
		return baselineScenario
	}
	return s.scenario.Name
}

func (s *Simulator) influenceMultiplier() float64 {
	if s.scenario == nil {
		return 1
	}
	return s.scenario.InfluenceMultiplier
}

func (s *Simulator) timestamp(tick int) time.Time {
	return s.startedAt.Add(time.Duration(tick) * s.cfg.TickDuration)
}

func (s *Simulator) totalInteractions() int {
	n := 0
	for _, a := range s.agents {
		n += a.TotalInteractions
	}
	return n
}

func newRunID() string {
	return uuid.New().String()
}
