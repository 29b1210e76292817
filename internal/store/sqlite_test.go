package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"viralsim/internal/telemetry"
)

func openTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "viralsim.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestOpenCreatesDatabase(t *testing.T) {
	_, path := openTestStore(t)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("database file was not created")
	}
}

func TestMetricsRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := []telemetry.MetricsRow{
		{RunID: "r1", Scenario: "baseline", Tick: 1, ActiveAgents: 3, SystemLoad: 0.03, ResponseTime: 1.0009, Perception: 0.95, Timestamp: ts.Add(time.Second)},
		{RunID: "r1", Scenario: "baseline", Tick: 0, ActiveAgents: 1, SystemLoad: 0.01, ResponseTime: 1.0001, Perception: 0.99, Timestamp: ts},
		{RunID: "r2", Scenario: "other", Tick: 0, Timestamp: ts},
	}
	if err := s.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch() error = %v", err)
	}

	got, err := s.Metrics(ctx, "r1")
	if err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Metrics() returned %d rows, want 2", len(got))
	}
	if got[0].Tick != 0 || got[1].Tick != 1 {
		t.Errorf("rows not ordered by tick: %+v", got)
	}
	if got[1].Perception != 0.95 || !got[1].Timestamp.Equal(ts.Add(time.Second)) {
		t.Errorf("row did not round trip: %+v", got[1])
	}
}

func TestEventsAndSummaries(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	events := []telemetry.ViralEventRow{
		{RunID: "r1", Scenario: "s", Tick: 2, SourceAgentID: 1, AffectedAgentID: 2, SourceArchetype: "normal", Timestamp: ts},
		{RunID: "r1", Scenario: "s", Tick: 2, SourceAgentID: 1, AffectedAgentID: 3, SourceArchetype: "normal", Timestamp: ts},
	}
	if err := s.WriteEvents(events); err != nil {
		t.Fatalf("WriteEvents() error = %v", err)
	}
	if err := s.WriteEvent(telemetry.ViralEventRow{RunID: "r2", Scenario: "s", SourceArchetype: "critical", Timestamp: ts}); err != nil {
		t.Fatalf("WriteEvent() error = %v", err)
	}
	n, err := s.EventCount(ctx, "r1")
	if err != nil {
		t.Fatalf("EventCount() error = %v", err)
	}
	if n != 2 {
		t.Errorf("EventCount() = %d, want 2", n)
	}

	first := telemetry.SummaryRow{RunID: "r1", Scenario: "Low virality", FailureProbability: 0.005, InfluenceMultiplier: 0.5, TotalEvents: 2, EventsNormal: 2, Timestamp: ts}
	second := telemetry.SummaryRow{RunID: "r2", Scenario: "High virality", FailureProbability: 0.02, InfluenceMultiplier: 2, Timestamp: ts.Add(time.Minute)}
	for _, r := range []telemetry.SummaryRow{second, first, first} {
		if err := s.WriteSummary(r); err != nil {
			t.Fatalf("WriteSummary() error = %v", err)
		}
	}
	got, err := s.Summaries(ctx)
	if err != nil {
		t.Fatalf("Summaries() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Summaries() returned %d rows, want 2", len(got))
	}
	if got[0] != first || got[1] != second {
		t.Errorf("Summaries() = %+v", got)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viralsim.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Write(telemetry.MetricsRow{RunID: "r1", Scenario: "s", Timestamp: time.Unix(0, 0)}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	got, err := s.Metrics(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("data lost on reopen: %d rows", len(got))
	}
}
