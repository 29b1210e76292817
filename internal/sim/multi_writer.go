package sim

import (
	"errors"

	"viralsim/internal/telemetry"
)

// MultiWriter fan-outs metrics, event and summary rows to multiple writers.
// Every writer is attempted; errors are joined.
type MultiWriter struct {
	telewriters  []TelemetryWriter
	eventwriters []EventWriter
}

// NewMultiWriter creates a new MultiWriter. Summary rows go to every
// telemetry or event writer that implements SummaryWriter, once each.
func NewMultiWriter(tws []TelemetryWriter, ews []EventWriter) *MultiWriter {
	return &MultiWriter{telewriters: tws, eventwriters: ews}
}

// Write sends a metrics row to all writers.
func (mw *MultiWriter) Write(row telemetry.MetricsRow) error {
	var errs []error
	for _, w := range mw.telewriters {
		if err := w.Write(row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteBatch sends multiple metrics rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.MetricsRow) error {
	var errs []error
	for _, w := range mw.telewriters {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	return errors.Join(errs...)
}

// WriteEvent sends an event row to all event writers.
func (mw *MultiWriter) WriteEvent(row telemetry.ViralEventRow) error {
	var errs []error
	for _, w := range mw.eventwriters {
		if err := w.WriteEvent(row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteEvents sends multiple event rows to all event writers, using batch if supported.
func (mw *MultiWriter) WriteEvents(rows []telemetry.ViralEventRow) error {
	var errs []error
	for _, w := range mw.eventwriters {
		if bw, ok := w.(batchEventWriter); ok {
			if err := bw.WriteEvents(rows); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteEvent(r); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	return errors.Join(errs...)
}

// WriteSummary forwards a summary row to every distinct writer supporting it.
func (mw *MultiWriter) WriteSummary(row telemetry.SummaryRow) error {
	var errs []error
	seen := make(map[any]bool)
	forward := func(w any) {
		sw, ok := w.(SummaryWriter)
		if !ok || seen[w] {
			return
		}
		seen[w] = true
		if err := sw.WriteSummary(row); err != nil {
			errs = append(errs, err)
		}
	}
	for _, w := range mw.telewriters {
		forward(w)
	}
	for _, w := range mw.eventwriters {
		forward(w)
	}
	return errors.Join(errs...)
}

// Close closes every writer that implements io.Closer, once each.
func (mw *MultiWriter) Close() error {
	var errs []error
	seen := make(map[any]bool)
	closeOne := func(w any) {
		c, ok := w.(interface{ Close() error })
		if !ok || seen[w] {
			return
		}
		seen[w] = true
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, w := range mw.telewriters {
		closeOne(w)
	}
	for _, w := range mw.eventwriters {
		closeOne(w)
	}
	return errors.Join(errs...)
}
