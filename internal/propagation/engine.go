// Package propagation spreads failure awareness from a reporting agent to
// dormant agents and records the resulting viralization events.
package propagation

import (
	"math"
	"math/rand"

	"viralsim/internal/agent"
)

// Event records one dormant agent made aware by a reporting source.
type Event struct {
	Tick            int             `json:"tick"`
	SourceID        int             `json:"source_agent_id"`
	AffectedID      int             `json:"affected_agent_id"`
	SourceArchetype agent.Archetype `json:"source_archetype"`
}

// Reach draws how many agents src would notify: influence × share × U(0.5, 1.5), rounded.
func Reach(rng *rand.Rand, src *agent.Agent) int {
	jitter := 0.5 + rng.Float64()
	return int(math.Round(src.Influence * src.ShareProbability * jitter))
}

// Spread makes up to Reach(src) dormant agents aware, chosen uniformly without
// replacement from the dormant pool in population order. It returns one event
// per newly aware agent, in selection order. An empty pool is a no-op.
func Spread(rng *rand.Rand, src *agent.Agent, agents []*agent.Agent, tick int) []Event {
	reach := Reach(rng, src)
	targets := agent.Sample(rng, agent.Filter(agents, agent.Dormant), reach)
	if len(targets) == 0 {
		return nil
	}
	events := make([]Event, 0, len(targets))
	for _, target := range targets {
		target.Awareness = agent.Aware
		events = append(events, Event{
			Tick:            tick,
			SourceID:        src.ID,
			AffectedID:      target.ID,
			SourceArchetype: src.Archetype,
		})
	}
	return events
}
