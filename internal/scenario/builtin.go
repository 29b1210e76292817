package scenario

// DefaultSet names the built-in set used when none is given.
const DefaultSet = "comparison"

// BuiltIn returns the predefined scenario sets.
func BuiltIn() map[string]Set {
	return map[string]Set{
		"comparison": {
			Name:        "Comparison",
			Description: "Four escalating virality levels run back to back on one population. Influence multipliers compound from one scenario to the next.",
			Scenarios: []Scenario{
				{Name: "Low virality", FailureProbability: 0.005, InfluenceMultiplier: 0.5},
				{Name: "Normal virality", FailureProbability: 0.01, InfluenceMultiplier: 1.0},
				{Name: "High virality", FailureProbability: 0.02, InfluenceMultiplier: 2.0},
				{Name: "Viral crisis", FailureProbability: 0.05, InfluenceMultiplier: 5.0},
			},
		},
		"comparison-independent": {
			Name:        "Comparison (independent)",
			Description: "The comparison levels with each multiplier applied to the population's original influence.",
			Independent: true,
			Scenarios: []Scenario{
				{Name: "Low virality", FailureProbability: 0.005, InfluenceMultiplier: 0.5},
				{Name: "Normal virality", FailureProbability: 0.01, InfluenceMultiplier: 1.0},
				{Name: "High virality", FailureProbability: 0.02, InfluenceMultiplier: 2.0},
				{Name: "Viral crisis", FailureProbability: 0.05, InfluenceMultiplier: 5.0},
			},
		},
		"reliability": {
			Name:        "Reliability",
			Description: "Failure probability sweep at unchanged influence.",
			Scenarios: []Scenario{
				{Name: "Flawless", FailureProbability: 0, InfluenceMultiplier: 1},
				{Name: "Occasional", FailureProbability: 0.01, InfluenceMultiplier: 1},
				{Name: "Flaky", FailureProbability: 0.05, InfluenceMultiplier: 1},
				{Name: "Broken", FailureProbability: 0.2, InfluenceMultiplier: 1},
			},
		},
	}
}
