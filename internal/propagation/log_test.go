package propagation

import (
	"testing"

	"viralsim/internal/agent"
)

func TestLogUnbounded(t *testing.T) {
	l := NewLog(0)
	l.Append(Event{AffectedID: 1}, Event{AffectedID: 2, SourceArchetype: agent.ArchetypeCritical})
	if l.Total() != 2 || len(l.Events()) != 2 || l.Dropped() != 0 {
		t.Fatalf("unexpected log state: total=%d kept=%d dropped=%d", l.Total(), len(l.Events()), l.Dropped())
	}
	counts := l.ByArchetype()
	if counts[agent.ArchetypeNormal] != 1 || counts[agent.ArchetypeCritical] != 1 {
		t.Fatalf("unexpected breakdown %v", counts)
	}
}

func TestLogLimit(t *testing.T) {
	l := NewLog(3)
	for i := 0; i < 10; i++ {
		l.Append(Event{AffectedID: i, SourceArchetype: agent.ArchetypeInfluencer})
	}
	events := l.Events()
	if len(events) != 3 {
		t.Fatalf("kept %d events, want 3", len(events))
	}
	for i, e := range events {
		if e.AffectedID != i {
			t.Fatalf("kept event %d is %+v, want the earliest events", i, e)
		}
	}
	if l.Total() != 10 || l.Dropped() != 7 {
		t.Fatalf("total=%d dropped=%d", l.Total(), l.Dropped())
	}
	if l.ByArchetype()[agent.ArchetypeInfluencer] != 10 {
		t.Fatalf("breakdown must count dropped events")
	}

	l.Reset()
	if l.Total() != 0 || len(l.Events()) != 0 || len(l.ByArchetype()) != 0 {
		t.Fatalf("reset left state behind")
	}
	l.Append(Event{}, Event{}, Event{}, Event{})
	if len(l.Events()) != 3 {
		t.Fatalf("limit lost after reset")
	}
}

func TestLogEventsIsCopy(t *testing.T) {
	l := NewLog(0)
	l.Append(Event{AffectedID: 1})
	ev := l.Events()
	ev[0].AffectedID = 99
	if l.Events()[0].AffectedID != 1 {
		t.Fatalf("Events exposed internal storage")
	}
}
