package sim

import (
	"context"
	"fmt"

	"viralsim/internal/config"
	"viralsim/internal/logging"
	"viralsim/internal/scenario"
	"viralsim/internal/telemetry"
)

// RunScenarios runs every scenario of set in order on the same population.
// Before each run the responder's failure probability is overwritten and every
// agent's influence is multiplied by the scenario multiplier; after each run
// the summary is recorded and the simulator is reset. Multipliers compound
// across scenarios unless the set is independent.
func (s *Simulator) RunScenarios(ctx context.Context, set *scenario.Set) ([]telemetry.SummaryRow, error) {
	if set == nil {
		return nil, fmt.Errorf("%w: nil scenario set", config.ErrInvalidConfig)
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	log := logging.FromContext(ctx)
	if s.ran {
		s.Reset()
	}
	defer func() { s.scenario = nil }()

	results := make([]telemetry.SummaryRow, 0, len(set.Scenarios))
	for i := range set.Scenarios {
		sc := set.Scenarios[i]
		log.Info("running scenario",
			"scenario", sc.Name,
			"index", i+1,
			"of", len(set.Scenarios),
			"failure_probability", sc.FailureProbability,
			"influence_multiplier", sc.InfluenceMultiplier,
			"independent", set.Independent)

		s.responder.FailureProbability = sc.FailureProbability
		s.scaleInfluence(sc.InfluenceMultiplier, set.Independent)
		s.scenario = &sc
		s.Run(ctx)
		results = append(results, s.summary)
		s.Reset()
	}
	return results, nil
}

// scaleInfluence multiplies every agent's influence in place. With fromBase
// the multiplier is applied to the creation-time influence instead.
func (s *Simulator) scaleInfluence(multiplier float64, fromBase bool) {
	for _, a := range s.agents {
		if fromBase {
			a.Influence = a.BaseInfluence
		}
		a.Influence *= multiplier
	}
}
