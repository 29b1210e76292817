package sim

import (
	"encoding/json"
	"fmt"
	"io"

	"viralsim/internal/telemetry"
)

// JSONStdoutWriter prints metrics, events and summaries as JSON to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

func (w *JSONStdoutWriter) print(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// Write outputs a metrics row in JSON format.
func (w *JSONStdoutWriter) Write(row telemetry.MetricsRow) error {
	return w.print(row)
}

// WriteBatch outputs multiple metrics rows in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []telemetry.MetricsRow) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent outputs an event row in JSON format.
func (w *JSONStdoutWriter) WriteEvent(e telemetry.ViralEventRow) error {
	return w.print(e)
}

// WriteEvents outputs multiple event rows in JSON format.
func (w *JSONStdoutWriter) WriteEvents(rows []telemetry.ViralEventRow) error {
	for _, e := range rows {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary outputs a run summary in JSON format.
func (w *JSONStdoutWriter) WriteSummary(row telemetry.SummaryRow) error {
	return w.print(row)
}
