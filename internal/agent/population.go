package agent

import (
	"fmt"
	"math/rand"
)

// NewPopulation creates n agents. Each agent consumes four draws from rng in
// a fixed order: archetype band, interaction, share, influence.
func NewPopulation(n int, rng *rand.Rand) ([]*Agent, error) {
	if n <= 0 {
		return nil, fmt.Errorf("population size must be positive, got %d", n)
	}
	agents := make([]*Agent, n)
	for i := range agents {
		arch := archetypeFor(rng.Float64())
		p := profiles[arch]
		a := &Agent{
			ID:                     i,
			Archetype:              arch,
			InteractionProbability: p.Interaction.Sample(rng),
			ShareProbability:       p.Share.Sample(rng),
			Influence:              p.Influence.Sample(rng),
		}
		a.BaseInfluence = a.Influence
		agents[i] = a
	}
	return agents, nil
}

// Census counts agents per archetype.
func Census(agents []*Agent) map[Archetype]int {
	counts := make(map[Archetype]int, len(Archetypes))
	for _, a := range agents {
		counts[a.Archetype]++
	}
	return counts
}

// CountAwareness returns the number of reporting and aware agents.
func CountAwareness(agents []*Agent) (reporting, aware int) {
	for _, a := range agents {
		switch a.Awareness {
		case Reporting:
			reporting++
		case Aware:
			aware++
		}
	}
	return reporting, aware
}

// Filter returns the agents in the given state, in population order.
func Filter(agents []*Agent, state Awareness) []*Agent {
	var out []*Agent
	for _, a := range agents {
		if a.Awareness == state {
			out = append(out, a)
		}
	}
	return out
}

// Sample picks up to k agents uniformly without replacement and returns them
// in selection order. It consumes one draw per selected agent and leaves pool
// untouched.
func Sample(rng *rand.Rand, pool []*Agent, k int) []*Agent {
	k = min(k, len(pool))
	if k <= 0 {
		return nil
	}
	picked := make([]*Agent, len(pool))
	copy(picked, pool)
	// partial Fisher-Yates: the first k slots become the sample
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(picked)-i)
		picked[i], picked[j] = picked[j], picked[i]
	}
	return picked[:k]
}
