// Responder capacity, latency and failure model
package responder

import (
	"fmt"
	"math/rand"
)

// Responder models the automated service users interact with.
// TotalFailures is owned by the simulation driver; the responder never writes it.
type Responder struct {
	MaxCapacity        int
	BaseResponseTime   float64
	FailureProbability float64

	CurrentLoad         int
	TotalFailures       int
	CurrentResponseTime float64
}

// New returns a responder with zeroed runtime state.
func New(maxCapacity int, baseResponseTime, failureProbability float64) (*Responder, error) {
	if maxCapacity <= 0 {
		return nil, fmt.Errorf("responder: max capacity must be positive, got %d", maxCapacity)
	}
	if baseResponseTime <= 0 {
		return nil, fmt.Errorf("responder: base response time must be positive, got %g", baseResponseTime)
	}
	if !(failureProbability >= 0 && failureProbability <= 1) {
		return nil, fmt.Errorf("responder: failure probability must be in [0,1], got %g", failureProbability)
	}
	return &Responder{
		MaxCapacity:        maxCapacity,
		BaseResponseTime:   baseResponseTime,
		FailureProbability: failureProbability,
	}, nil
}

// UpdateLoad clamps the active count to capacity and recomputes the response time.
// Latency grows with the square of relative load.
func (r *Responder) UpdateLoad(activeCount int) {
	load := activeCount
	if load > r.MaxCapacity {
		load = r.MaxCapacity
	}
	if load < 0 {
		load = 0
	}
	r.CurrentLoad = load
	rel := r.RelativeLoad()
	r.CurrentResponseTime = r.BaseResponseTime * (1 + rel*rel)
}

// RelativeLoad is CurrentLoad / MaxCapacity, always within [0,1].
func (r *Responder) RelativeLoad() float64 {
	return float64(r.CurrentLoad) / float64(r.MaxCapacity)
}

// AttemptFailure draws once from rng and reports whether this interaction failed.
func (r *Responder) AttemptFailure(rng *rand.Rand) bool {
	return rng.Float64() < r.FailureProbability
}

// Reset clears runtime state. Configuration is left untouched.
func (r *Responder) Reset() {
	r.CurrentLoad = 0
	r.TotalFailures = 0
	r.CurrentResponseTime = 0
}
