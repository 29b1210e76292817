package propagation

import "viralsim/internal/agent"

// Log is the append-only viralization event log of one run.
// With a positive limit only the first limit events are retained in memory;
// totals and per-archetype counts still cover every appended event.
type Log struct {
	limit       int
	events      []Event
	total       int
	byArchetype map[agent.Archetype]int
}

// NewLog creates a log. limit <= 0 means unbounded.
func NewLog(limit int) *Log {
	return &Log{limit: limit, byArchetype: make(map[agent.Archetype]int)}
}

// Append records events in order.
func (l *Log) Append(events ...Event) {
	for _, e := range events {
		l.total++
		l.byArchetype[e.SourceArchetype]++
		if l.limit > 0 && len(l.events) >= l.limit {
			continue
		}
		l.events = append(l.events, e)
	}
}

// Events returns a copy of the retained events.
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Total is the number of events appended since the last reset.
func (l *Log) Total() int { return l.total }

// Dropped is the number of events not retained because of the limit.
func (l *Log) Dropped() int { return l.total - len(l.events) }

// ByArchetype returns event counts keyed by source archetype.
func (l *Log) ByArchetype() map[agent.Archetype]int {
	out := make(map[agent.Archetype]int, len(l.byArchetype))
	for k, v := range l.byArchetype {
		out[k] = v
	}
	return out
}

// Reset empties the log, keeping its limit.
func (l *Log) Reset() {
	l.events = nil
	l.total = 0
	l.byArchetype = make(map[agent.Archetype]int)
}
