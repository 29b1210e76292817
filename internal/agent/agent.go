package agent

import "math/rand"

// Agent is one simulated user.
type Agent struct {
	ID        int
	Archetype Archetype

	InteractionProbability float64
	ShareProbability       float64
	// Influence is the expected fan-out multiplier. Scenario runs rescale it in place.
	Influence float64
	// BaseInfluence is the value drawn at creation.
	BaseInfluence float64

	Awareness           Awareness
	LastInteractionTick int
	TotalInteractions   int
	ReportedFailures    int
}

// Interact draws whether the agent contacts the responder this tick and
// records the interaction if it does.
func (a *Agent) Interact(rng *rand.Rand, tick int) bool {
	if rng.Float64() >= a.InteractionProbability {
		return false
	}
	a.TotalInteractions++
	a.LastInteractionTick = tick
	return true
}

// Reset returns the agent to dormant with zeroed counters.
// Behavioural parameters, including the current influence, are kept.
func (a *Agent) Reset() {
	a.Awareness = Dormant
	a.LastInteractionTick = 0
	a.TotalInteractions = 0
	a.ReportedFailures = 0
}
