package sim

import "viralsim/internal/telemetry"

// EventWriter handles viralization events.
type EventWriter interface {
	WriteEvent(telemetry.ViralEventRow) error
}

// Optional: event writers may support batch mode.
type batchEventWriter interface {
	WriteEvents([]telemetry.ViralEventRow) error
}
