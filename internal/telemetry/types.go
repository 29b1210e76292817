// Output row types shared by every sink
package telemetry

import "time"

// MetricsRow is the aggregate state of one tick.
type MetricsRow struct {
	RunID              string    `json:"run_id" csv:"run_id"`                           // TAG
	Scenario           string    `json:"scenario" csv:"scenario"`                       // TAG
	Tick               int       `json:"tick" csv:"tick"`                               // FIELD
	ActiveAgents       int       `json:"active_agents" csv:"active_agents"`             // FIELD
	AwareAgents        int       `json:"aware_agents" csv:"aware_agents"`               // FIELD
	SystemLoad         float64   `json:"system_load" csv:"system_load"`                 // FIELD
	CumulativeFailures int       `json:"cumulative_failures" csv:"cumulative_failures"` // FIELD
	ResponseTime       float64   `json:"response_time" csv:"response_time"`             // FIELD
	Perception         float64   `json:"public_perception" csv:"public_perception"`     // FIELD
	Timestamp          time.Time `json:"ts" csv:"ts"`                                   // TIME INDEX
}

// ViralEventRow records one agent made aware by a reporting source.
type ViralEventRow struct {
	RunID           string    `json:"run_id" csv:"run_id"`
	Scenario        string    `json:"scenario" csv:"scenario"`
	Tick            int       `json:"tick" csv:"tick"`
	SourceAgentID   int       `json:"source_agent_id" csv:"source_agent_id"`
	AffectedAgentID int       `json:"affected_agent_id" csv:"affected_agent_id"`
	SourceArchetype string    `json:"source_archetype" csv:"source_archetype"`
	Timestamp       time.Time `json:"ts" csv:"ts"`
}

// SummaryRow condenses one completed run for scenario comparison.
type SummaryRow struct {
	RunID               string    `json:"run_id" csv:"run_id"`
	Scenario            string    `json:"scenario" csv:"scenario"`
	FailureProbability  float64   `json:"failure_probability" csv:"failure_probability"`
	InfluenceMultiplier float64   `json:"influence_multiplier" csv:"influence_multiplier"`
	Population          int       `json:"population" csv:"population"`
	Ticks               int       `json:"ticks" csv:"ticks"`
	PeakActive          int       `json:"peak_active" csv:"peak_active"`
	PeakLoad            float64   `json:"peak_load" csv:"peak_load"`
	FinalFailures       int       `json:"final_failures" csv:"final_failures"`
	FinalPerception     float64   `json:"final_perception" csv:"final_perception"`
	MeanPerception      float64   `json:"mean_perception" csv:"mean_perception"`
	TotalEvents         int       `json:"total_events" csv:"total_events"`
	EventsNormal        int       `json:"events_normal" csv:"events_normal"`
	EventsCritical      int       `json:"events_critical" csv:"events_critical"`
	EventsInfluencer    int       `json:"events_influencer" csv:"events_influencer"`
	Timestamp           time.Time `json:"ts" csv:"ts"`
}
