package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"viralsim/internal/telemetry"
)

// ReplayOptions selects recorded metrics and sets the playback pace.
type ReplayOptions struct {
	// Speed scales the recorded spacing between ticks of one run. With
	// Speed <= 0 rows are replayed without delay, one batch per run.
	Speed float64
	// RunID and Scenario restrict playback when set.
	RunID    string
	Scenario string
}

func (o ReplayOptions) keep(row telemetry.MetricsRow) bool {
	return (o.RunID == "" || row.RunID == o.RunID) &&
		(o.Scenario == "" || row.Scenario == o.Scenario)
}

// replayer feeds rows to a writer run by run. Ticks must increase within a run.
type replayer struct {
	writer  TelemetryWriter
	opts    ReplayOptions
	sleep   func(time.Duration)
	pending []telemetry.MetricsRow
	last    telemetry.MetricsRow
	started bool
	written int
}

func newReplayer(writer TelemetryWriter, opts ReplayOptions) *replayer {
	return &replayer{writer: writer, opts: opts, sleep: time.Sleep}
}

func (p *replayer) add(row telemetry.MetricsRow) error {
	if !p.opts.keep(row) {
		return nil
	}
	prev := p.last
	sameRun := p.started && row.RunID == prev.RunID
	if sameRun && row.Tick <= prev.Tick {
		return fmt.Errorf("run %s: tick %d recorded after tick %d", row.RunID, row.Tick, prev.Tick)
	}
	if !sameRun {
		if err := p.flush(); err != nil {
			return err
		}
	}
	p.last, p.started = row, true

	if p.opts.Speed <= 0 {
		p.pending = append(p.pending, row)
		return nil
	}
	if sameRun {
		if d := time.Duration(float64(row.Timestamp.Sub(prev.Timestamp)) / p.opts.Speed); d > 0 {
			p.sleep(d)
		}
	}
	if err := p.writer.Write(row); err != nil {
		return err
	}
	p.written++
	return nil
}

func (p *replayer) flush() error {
	if len(p.pending) == 0 {
		return nil
	}
	rows := p.pending
	p.pending = nil
	if bw, ok := p.writer.(batchWriter); ok {
		if err := bw.WriteBatch(rows); err != nil {
			return err
		}
		p.written += len(rows)
		return nil
	}
	for _, r := range rows {
		if err := p.writer.Write(r); err != nil {
			return err
		}
		p.written++
	}
	return nil
}

// ReplayRows feeds already loaded metrics rows to writer and returns how many
// were written.
func ReplayRows(rows []telemetry.MetricsRow, writer TelemetryWriter, opts ReplayOptions) (int, error) {
	p := newReplayer(writer, opts)
	for _, row := range rows {
		if err := p.add(row); err != nil {
			return p.written, err
		}
	}
	err := p.flush()
	return p.written, err
}

// ReplayLog decodes a JSONL metrics log from r and feeds it to writer. Rows
// decoded before a malformed line are still written.
func ReplayLog(r io.Reader, writer TelemetryWriter, opts ReplayOptions) (int, error) {
	p := newReplayer(writer, opts)
	dec := json.NewDecoder(r)
	for {
		var row telemetry.MetricsRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			return p.written, errors.Join(err, p.flush())
		}
		if err := p.add(row); err != nil {
			return p.written, err
		}
	}
}

// ReplayLogFile opens a JSONL metrics log and replays it.
func ReplayLogFile(path string, writer TelemetryWriter, opts ReplayOptions) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ReplayLog(f, writer, opts)
}
