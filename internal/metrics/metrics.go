// Package metrics records the per-tick aggregate state of a run and derives
// the public perception score and run summaries from it.
package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metric names, in reporting order.
const (
	ActiveAgents       = "active_agents"
	AwareAgents        = "aware_agents"
	SystemLoad         = "system_load"
	CumulativeFailures = "cumulative_failures"
	ResponseTime       = "response_time"
	PublicPerception   = "public_perception"
)

// Names lists every recorded metric.
var Names = []string{ActiveAgents, AwareAgents, SystemLoad, CumulativeFailures, ResponseTime, PublicPerception}

const (
	errorWeight = 10.0
	loadWeight  = 0.3
)

// Perception scores public sentiment in [0,1] from the failure rate and the
// responder's relative load. Zero interactions count as one.
func Perception(totalFailures, totalInteractions int, relativeLoad float64) float64 {
	errorsPerInteraction := float64(totalFailures) / float64(max(1, totalInteractions))
	p := 1 - errorsPerInteraction*errorWeight - relativeLoad*loadWeight
	return min(1, max(0, p))
}

// Snapshot is the aggregate state recorded at the end of one tick.
type Snapshot struct {
	Tick               int
	ActiveAgents       int
	AwareAgents        int
	SystemLoad         float64
	CumulativeFailures int
	ResponseTime       float64
	Perception         float64
}

func (s Snapshot) value(name string) float64 {
	switch name {
	case ActiveAgents:
		return float64(s.ActiveAgents)
	case AwareAgents:
		return float64(s.AwareAgents)
	case SystemLoad:
		return s.SystemLoad
	case CumulativeFailures:
		return float64(s.CumulativeFailures)
	case ResponseTime:
		return s.ResponseTime
	case PublicPerception:
		return s.Perception
	}
	return 0
}

// Series is the append-only, tick-ordered record of one run.
type Series struct {
	snapshots []Snapshot
}

// NewSeries returns an empty series.
func NewSeries() *Series {
	return &Series{}
}

// Append records the snapshot for the next tick.
func (s *Series) Append(snap Snapshot) {
	s.snapshots = append(s.snapshots, snap)
}

// Len is the number of ticks recorded.
func (s *Series) Len() int { return len(s.snapshots) }

// Snapshots returns a copy of every recorded snapshot.
func (s *Series) Snapshots() []Snapshot {
	out := make([]Snapshot, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}

// Last returns the most recent snapshot.
func (s *Series) Last() (Snapshot, bool) {
	if len(s.snapshots) == 0 {
		return Snapshot{}, false
	}
	return s.snapshots[len(s.snapshots)-1], true
}

// Values returns the series for one metric name, indexed by tick.
func (s *Series) Values(name string) ([]float64, error) {
	if !known(name) {
		return nil, fmt.Errorf("unknown metric %q", name)
	}
	out := make([]float64, len(s.snapshots))
	for i, snap := range s.snapshots {
		out[i] = snap.value(name)
	}
	return out, nil
}

// All returns every metric series keyed by name.
func (s *Series) All() map[string][]float64 {
	out := make(map[string][]float64, len(Names))
	for _, n := range Names {
		out[n], _ = s.Values(n)
	}
	return out
}

// Reset discards all recorded ticks.
func (s *Series) Reset() {
	s.snapshots = nil
}

func known(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Summary condenses a run into its comparison statistics.
type Summary struct {
	PeakActive      int
	PeakLoad        float64
	FinalFailures   int
	FinalPerception float64
	MeanPerception  float64
}

// Summarize computes the run summary. An empty series yields the zero Summary.
func (s *Series) Summarize() Summary {
	last, ok := s.Last()
	if !ok {
		return Summary{}
	}
	active, _ := s.Values(ActiveAgents)
	load, _ := s.Values(SystemLoad)
	perception, _ := s.Values(PublicPerception)
	return Summary{
		PeakActive:      int(floats.Max(active)),
		PeakLoad:        floats.Max(load),
		FinalFailures:   last.CumulativeFailures,
		FinalPerception: last.Perception,
		MeanPerception:  stat.Mean(perception, nil),
	}
}
