// Writer implementation printing simulation output to STDOUT
package sim

import (
	"io"
	"os"

	"golang.org/x/term"

	"viralsim/internal/config"
	"viralsim/internal/telemetry"
)

// StdoutWriter prints colorized rows when STDOUT is a terminal and JSON lines otherwise.
type StdoutWriter struct {
	colorize bool
	color    *ColorStdoutWriter
	json     *JSONStdoutWriter
}

// NewStdoutWriter creates a StdoutWriter for os.Stdout.
func NewStdoutWriter(cfg *config.SimulationConfig) *StdoutWriter {
	return newStdoutWriter(cfg, os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
}

func newStdoutWriter(cfg *config.SimulationConfig, out io.Writer, colorize bool) *StdoutWriter {
	color := NewColorStdoutWriter(cfg)
	color.out = out
	return &StdoutWriter{
		colorize: colorize,
		color:    color,
		json:     &JSONStdoutWriter{out: out},
	}
}

// Write outputs a single metrics row.
func (w *StdoutWriter) Write(row telemetry.MetricsRow) error {
	if w.colorize {
		return w.color.Write(row)
	}
	return w.json.Write(row)
}

// WriteBatch outputs multiple metrics rows.
func (w *StdoutWriter) WriteBatch(rows []telemetry.MetricsRow) error {
	if w.colorize {
		return w.color.WriteBatch(rows)
	}
	return w.json.WriteBatch(rows)
}

// WriteEvent outputs a single event row.
func (w *StdoutWriter) WriteEvent(e telemetry.ViralEventRow) error {
	if w.colorize {
		return w.color.WriteEvent(e)
	}
	return w.json.WriteEvent(e)
}

// WriteEvents outputs multiple event rows.
func (w *StdoutWriter) WriteEvents(rows []telemetry.ViralEventRow) error {
	if w.colorize {
		return w.color.WriteEvents(rows)
	}
	return w.json.WriteEvents(rows)
}

// WriteSummary outputs a run summary.
func (w *StdoutWriter) WriteSummary(row telemetry.SummaryRow) error {
	if w.colorize {
		return w.color.WriteSummary(row)
	}
	return w.json.WriteSummary(row)
}
