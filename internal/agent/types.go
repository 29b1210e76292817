// Package agent holds the simulated user population: archetypes, awareness
// state and the population factory.
package agent

import (
	"fmt"
	"math/rand"
)

// Archetype is the fixed behavioural class of an agent.
type Archetype int

const (
	ArchetypeNormal Archetype = iota
	ArchetypeCritical
	ArchetypeInfluencer
)

// Archetypes lists every archetype in band order.
var Archetypes = []Archetype{ArchetypeNormal, ArchetypeCritical, ArchetypeInfluencer}

func (a Archetype) String() string {
	switch a {
	case ArchetypeNormal:
		return "normal"
	case ArchetypeCritical:
		return "critical"
	case ArchetypeInfluencer:
		return "influencer"
	}
	return fmt.Sprintf("archetype(%d)", int(a))
}

// MarshalText implements encoding.TextMarshaler.
func (a Archetype) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Archetype) UnmarshalText(b []byte) error {
	for _, c := range Archetypes {
		if c.String() == string(b) {
			*a = c
			return nil
		}
	}
	return fmt.Errorf("unknown archetype %q", string(b))
}

// Range is a closed interval sampled uniformly.
type Range struct {
	Min float64
	Max float64
}

// Sample draws one value from r using rng.
func (r Range) Sample(rng *rand.Rand) float64 {
	return r.Min + (r.Max-r.Min)*rng.Float64()
}

// Contains reports whether v lies within the interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Profile describes how agents of one archetype are drawn.
// Cutoff is the upper bound of the archetype's band on the unit interval.
type Profile struct {
	Cutoff      float64
	Interaction Range
	Share       Range
	Influence   Range
}

var profiles = map[Archetype]Profile{
	ArchetypeNormal: {
		Cutoff:      0.80,
		Interaction: Range{0.10, 0.30},
		Share:       Range{0.05, 0.15},
		Influence:   Range{1, 2},
	},
	ArchetypeCritical: {
		Cutoff:      0.95,
		Interaction: Range{0.40, 0.70},
		Share:       Range{0.30, 0.60},
		Influence:   Range{3, 8},
	},
	ArchetypeInfluencer: {
		Cutoff:      1.0,
		Interaction: Range{0.20, 0.50},
		Share:       Range{0.60, 0.90},
		Influence:   Range{10, 50},
	},
}

// ProfileOf returns the sampling profile for a.
func ProfileOf(a Archetype) Profile {
	return profiles[a]
}

// archetypeFor maps a uniform draw in [0,1) onto its archetype band.
func archetypeFor(u float64) Archetype {
	for _, a := range Archetypes {
		if u < profiles[a].Cutoff {
			return a
		}
	}
	return ArchetypeInfluencer
}

// Awareness is an agent's stage in the spread state machine.
type Awareness int

const (
	Dormant Awareness = iota
	Aware
	Reporting
)

func (s Awareness) String() string {
	switch s {
	case Dormant:
		return "dormant"
	case Aware:
		return "aware"
	case Reporting:
		return "reporting"
	}
	return fmt.Sprintf("awareness(%d)", int(s))
}
