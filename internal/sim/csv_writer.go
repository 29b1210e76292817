package sim

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"viralsim/internal/telemetry"
)

// CSV file names created inside the output directory.
const (
	MetricsCSV   = "metrics.csv"
	EventsCSV    = "events.csv"
	SummariesCSV = "summaries.csv"
)

// CSVWriter writes metrics, events and summaries as CSV files in one directory.
// The header of each file is written with its first record.
type CSVWriter struct {
	metricsFile *os.File
	eventFile   *os.File
	summaryFile *os.File

	metricsHeaderWritten bool
	eventHeaderWritten   bool
	summaryHeaderWritten bool
}

// NewCSVWriter creates dir if needed and opens the three CSV files.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	w := &CSVWriter{}
	var err error
	if w.metricsFile, err = os.Create(filepath.Join(dir, MetricsCSV)); err != nil {
		return nil, fmt.Errorf("creating %s: %w", MetricsCSV, err)
	}
	if w.eventFile, err = os.Create(filepath.Join(dir, EventsCSV)); err != nil {
		w.Close()
		return nil, fmt.Errorf("creating %s: %w", EventsCSV, err)
	}
	if w.summaryFile, err = os.Create(filepath.Join(dir, SummariesCSV)); err != nil {
		w.Close()
		return nil, fmt.Errorf("creating %s: %w", SummariesCSV, err)
	}
	return w, nil
}


// marshalCSV appends records to f, including the header on the first call.
func marshalCSV(records any, f *os.File, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// Write appends one metrics row.
func (w *CSVWriter) Write(row telemetry.MetricsRow) error {
	return w.WriteBatch([]telemetry.MetricsRow{row})
}

// WriteBatch appends multiple metrics rows.
func (w *CSVWriter) WriteBatch(rows []telemetry.MetricsRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := marshalCSV(rows, w.metricsFile, &w.metricsHeaderWritten); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

// WriteEvent appends one event row.
func (w *CSVWriter) WriteEvent(row telemetry.ViralEventRow) error {
	return w.WriteEvents([]telemetry.ViralEventRow{row})
}

// WriteEvents appends multiple event rows.
func (w *CSVWriter) WriteEvents(rows []telemetry.ViralEventRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := marshalCSV(rows, w.eventFile, &w.eventHeaderWritten); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}
	return nil
}

// WriteSummary appends one summary row.
func (w *CSVWriter) WriteSummary(row telemetry.SummaryRow) error {
	if err := marshalCSV([]telemetry.SummaryRow{row}, w.summaryFile, &w.summaryHeaderWritten); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// Close closes the CSV files.
func (w *CSVWriter) Close() error {
	var err error
	for _, f := range []*os.File{w.metricsFile, w.eventFile, w.summaryFile} {
		if f == nil {
			continue
		}
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
