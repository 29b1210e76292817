package sim

import (
	"context"

	"viralsim/internal/agent"
	"viralsim/internal/logging"
	"viralsim/internal/metrics"
	"viralsim/internal/propagation"
	"viralsim/internal/telemetry"
)

// Run executes one full simulation of the configured tick budget and leaves
// metrics and the event log populated. A simulator that already ran is reset
// first. ctx only carries the logger; a run is never cut short.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	if s.ran {
		s.Reset()
	}
	s.ran = true
	s.runID = newRunID()
	s.startedAt = s.now().UTC()
	log.Info("starting run",
		"run_id", s.runID,
		"scenario", s.scenarioName(),
		"population", len(s.agents),
		"ticks", s.cfg.Ticks,
		"seed", s.seed,
		"failure_probability", s.responder.FailureProbability)

	s.seedAwareness()
	for s.tick = 0; s.tick < s.cfg.Ticks; s.tick++ {
		s.step(ctx)
	}
	s.tick = s.cfg.Ticks - 1

	s.summary = s.buildSummary()
	s.writeSummary(ctx, s.summary)
	log.Info("run complete",
		"run_id", s.runID,
		"scenario", s.scenarioName(),
		"failures", s.summary.FinalFailures,
		"peak_active", s.summary.PeakActive,
		"perception", s.summary.FinalPerception,
		"events", s.summary.TotalEvents)
}

// seedAwareness makes up to initialAware random agents aware and lets one of
// them interact once, which may trigger the first failure and spread.
func (s *Simulator) seedAwareness() {
	seeds := agent.Sample(s.rand, s.agents, initialAware)
	if len(seeds) == 0 {
		return
	}
	for _, a := range seeds {
		a.Awareness = agent.Aware
	}
	s.interact(seeds[s.rand.Intn(len(seeds))])
}

// interact runs one agent's contact with the responder. On failure the
// driver counts it, awareness spreads from the agent and the agent starts
// reporting.
func (s *Simulator) interact(a *agent.Agent) {
	if !a.Interact(s.rand, s.tick) {
		return
	}
	if !s.responder.AttemptFailure(s.rand) {
		return
	}
	s.responder.TotalFailures++
	a.ReportedFailures++
	events := propagation.Spread(s.rand, a, s.agents, s.tick)
	a.Awareness = agent.Reporting
	s.events.Append(events...)
	s.pending = append(s.pending, events...)
}

// step advances one tick. Draw order: interactions of aware agents, then
// reporting decay, then network activation, each in population order.
func (s *Simulator) step(ctx context.Context) {
	reporting, aware := agent.CountAwareness(s.agents)
	s.responder.UpdateLoad(reporting)

	for _, a := range agent.Filter(s.agents, agent.Aware) {
		s.interact(a)
	}

	for _, a := range s.agents {
		if a.Awareness == agent.Reporting && s.rand.Float64() < reportingDecay {
			a.Awareness = agent.Aware
		}
	}

	if s.tick > 0 && s.tick%activationInterval == 0 {
		p := min(maxActivation, float64(reporting)/activationScale)
		for _, a := range agent.Filter(s.agents, agent.Dormant) {
			if s.rand.Float64() < p {
				a.Awareness = agent.Aware
			}
		}
	}

	snap := metrics.Snapshot{
		Tick:               s.tick,
		ActiveAgents:       reporting,
		AwareAgents:        aware,
		SystemLoad:         s.responder.RelativeLoad(),
		CumulativeFailures: s.responder.TotalFailures,
		ResponseTime:       s.responder.CurrentResponseTime,
		Perception:         metrics.Perception(s.responder.TotalFailures, s.totalInteractions(), s.responder.RelativeLoad()),
	}
	s.series.Append(snap)

	logging.FromContext(ctx).Log(ctx, logging.LevelTrace, "tick",
		"tick", snap.Tick,
		"active", snap.ActiveAgents,
		"aware", snap.AwareAgents,
		"load", snap.SystemLoad,
		"failures", snap.CumulativeFailures,
		"perception", snap.Perception)

	s.flush(ctx, snap)
}

// flush writes the tick's metrics row and the events raised since the last flush.
func (s *Simulator) flush(ctx context.Context, snap metrics.Snapshot) {
	log := logging.FromContext(ctx)
	events := s.pending
	s.pending = nil

	if s.writer != nil {
		if err := s.writer.Write(s.metricsRow(snap)); err != nil {
			log.Error("metrics write failed", "run_id", s.runID, "tick", snap.Tick, "err", err)
		}
	}

	if len(events) == 0 || s.eventWriter == nil {
		return
	}
	rows := make([]telemetry.ViralEventRow, len(events))
	for i, e := range events {
		rows[i] = s.eventRow(e)
	}
	if bw, ok := s.eventWriter.(batchEventWriter); ok {
		if err := bw.WriteEvents(rows); err != nil {
			log.Error("event batch write failed", "run_id", s.runID, "tick", snap.Tick, "err", err)
		}
		return
	}
	for _, r := range rows {
		if err := s.eventWriter.WriteEvent(r); err != nil {
			log.Error("event write failed", "run_id", s.runID, "tick", snap.Tick, "err", err)
		}
	}
}

func (s *Simulator) writeSummary(ctx context.Context, row telemetry.SummaryRow) {
	var sw SummaryWriter
	if w, ok := s.writer.(SummaryWriter); ok {
		sw = w
	} else if w, ok := s.eventWriter.(SummaryWriter); ok {
		sw = w
	}
	if sw == nil {
		return
	}
	if err := sw.WriteSummary(row); err != nil {
		logging.FromContext(ctx).Error("summary write failed", "run_id", s.runID, "err", err)
	}
}

func (s *Simulator) metricsRow(snap metrics.Snapshot) telemetry.MetricsRow {
	return telemetry.MetricsRow{
		RunID:              s.runID,
		Scenario:           s.scenarioName(),
		Tick:               snap.Tick,
		ActiveAgents:       snap.ActiveAgents,
		AwareAgents:        snap.AwareAgents,
		SystemLoad:         snap.SystemLoad,
		CumulativeFailures: snap.CumulativeFailures,
		ResponseTime:       snap.ResponseTime,
		Perception:         snap.Perception,
		Timestamp:          s.timestamp(snap.Tick),
	}
}

func (s *Simulator) eventRow(e propagation.Event) telemetry.ViralEventRow {
	return telemetry.ViralEventRow{
		RunID:           s.runID,
		Scenario:        s.scenarioName(),
		Tick:            e.Tick,
		SourceAgentID:   e.SourceID,
		AffectedAgentID: e.AffectedID,
		SourceArchetype: e.SourceArchetype.String(),
		Timestamp:       s.timestamp(e.Tick),
	}
}

func (s *Simulator) buildSummary() telemetry.SummaryRow {
	sum := s.series.Summarize()
	byArch := s.events.ByArchetype()
	return telemetry.SummaryRow{
		RunID:               s.runID,
		Scenario:            s.scenarioName(),
		FailureProbability:  s.responder.FailureProbability,
		InfluenceMultiplier: s.influenceMultiplier(),
		Population:          len(s.agents),
		Ticks:               s.series.Len(),
		PeakActive:          sum.PeakActive,
		PeakLoad:            sum.PeakLoad,
		FinalFailures:       sum.FinalFailures,
		FinalPerception:     sum.FinalPerception,
		MeanPerception:      sum.MeanPerception,
		TotalEvents:         s.events.Total(),
		EventsNormal:        byArch[agent.ArchetypeNormal],
		EventsCritical:      byArch[agent.ArchetypeCritical],
		EventsInfluencer:    byArch[agent.ArchetypeInfluencer],
		Timestamp:           s.timestamp(s.series.Len()),
	}
}
