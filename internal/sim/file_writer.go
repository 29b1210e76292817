package sim

import (
	"encoding/json"
	"os"

	"viralsim/internal/telemetry"
)

// FileWriter writes metrics, events and summaries to JSONL files.
type FileWriter struct {
	metricsFile *os.File
	eventFile   *os.File
	summaryFile *os.File
	metricsEnc  *json.Encoder
	eventEnc    *json.Encoder
	summaryEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. eventPath or summaryPath may be empty to skip those logs.
func NewFileWriter(metricsPath, eventPath, summaryPath string) (*FileWriter, error) {
	mf, err := os.Create(metricsPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{metricsFile: mf, metricsEnc: json.NewEncoder(mf)}
	if eventPath != "" {
		ef, err := os.Create(eventPath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.eventFile = ef
		fw.eventEnc = json.NewEncoder(ef)
	}
	if summaryPath != "" {
		sf, err := os.Create(summaryPath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.summaryFile = sf
		fw.summaryEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// Write logs a single metrics row.
func (f *FileWriter) Write(row telemetry.MetricsRow) error {
	return f.metricsEnc.Encode(row)
}

// WriteBatch logs multiple metrics rows.
func (f *FileWriter) WriteBatch(rows []telemetry.MetricsRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent logs a single event row, if enabled.
func (f *FileWriter) WriteEvent(e telemetry.ViralEventRow) error {
	if f.eventEnc == nil {
		return nil
	}
	return f.eventEnc.Encode(e)
}

// WriteEvents logs multiple event rows.
func (f *FileWriter) WriteEvents(rows []telemetry.ViralEventRow) error {
	for _, e := range rows {
		if err := f.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary logs a run summary, if enabled.
func (f *FileWriter) WriteSummary(row telemetry.SummaryRow) error {
	if f.summaryEnc == nil {
		return nil
	}
	return f.summaryEnc.Encode(row)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	for _, file := range []*os.File{f.metricsFile, f.eventFile, f.summaryFile} {
		if file == nil {
			continue
		}
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
