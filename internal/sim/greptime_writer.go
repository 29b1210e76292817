package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"viralsim/internal/telemetry"
)

// Default GreptimeDB table names.
const (
	DefaultMetricsTable  = "viral_metrics"
	DefaultEventsTable   = "viral_events"
	DefaultSummaryTable  = "scenario_summaries"
	greptimeWriteTimeout = 10 * time.Second
)

type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeTables names the tables the writer ingests into.
type GreptimeTables struct {
	Metrics string
	Events  string
	Summary string
}

func (t GreptimeTables) withDefaults() GreptimeTables {
	if t.Metrics == "" {
		t.Metrics = DefaultMetricsTable
	}
	if t.Events == "" {
		t.Events = DefaultEventsTable
	}
	if t.Summary == "" {
		t.Summary = DefaultSummaryTable
	}
	return t
}

// GreptimeDBWriter writes metrics, events and summaries to GreptimeDB via the ingester client.
// Tables are created by the server on first write.
type GreptimeDBWriter struct {
	client       greptimeClient
	metricsTable string
	eventsTable  string
	summaryTable string
}

// NewGreptimeDBWriter connects to the GreptimeDB gRPC endpoint at host:port.
func NewGreptimeDBWriter(host string, port int, database string, tables GreptimeTables) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	tables = tables.withDefaults()
	return &GreptimeDBWriter{
		client:       client,
		metricsTable: tables.Metrics,
		eventsTable:  tables.Events,
		summaryTable: tables.Summary,
	}, nil
}

func (w *GreptimeDBWriter) write(tbl *table.Table, rows int) error {
	ctx, cancel := context.WithTimeout(context.Background(), greptimeWriteTimeout)
	defer cancel()
	resp, err := w.client.Write(ctx, tbl)
	if err != nil {
		return fmt.Errorf("greptime write: %w", err)
	}
	slog.Debug("greptime write", "rows", rows, "affected", resp.GetAffectedRows().GetValue())
	return nil
}

// Write inserts a single metrics row.
func (w *GreptimeDBWriter) Write(row telemetry.MetricsRow) error {
	return w.WriteBatch([]telemetry.MetricsRow{row})
}

// WriteBatch inserts multiple metrics rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.MetricsRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := metricsTable(w.metricsTable, rows)
	if err != nil {
		return err
	}
	return w.write(tbl, len(rows))
}

// WriteEvent inserts a single event row.
func (w *GreptimeDBWriter) WriteEvent(row telemetry.ViralEventRow) error {
	return w.WriteEvents([]telemetry.ViralEventRow{row})
}

// WriteEvents inserts multiple event rows.
func (w *GreptimeDBWriter) WriteEvents(rows []telemetry.ViralEventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := eventsTable(w.eventsTable, rows)
	if err != nil {
		return err
	}
	return w.write(tbl, len(rows))
}

// WriteSummary inserts a run summary.
func (w *GreptimeDBWriter) WriteSummary(row telemetry.SummaryRow) error {
	tbl, err := summaryTable(w.summaryTable, row)
	if err != nil {
		return err
	}
	return w.write(tbl, 1)
}

type column struct {
	name string
	typ  types.ColumnType
}

func newTable(name string, tags, fields []column) (*table.Table, error) {
	tbl, err := table.New(name)
	if err != nil {
		return nil, err
	}
	for _, c := range tags {
		if err := tbl.AddTagColumn(c.name, c.typ); err != nil {
			return nil, err
		}
	}
	for _, c := range fields {
		if err := tbl.AddFieldColumn(c.name, c.typ); err != nil {
			return nil, err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}
	return tbl, nil
}

func metricsTable(name string, rows []telemetry.MetricsRow) (*table.Table, error) {
	tbl, err := newTable(name,
		[]column{{"run_id", types.STRING}, {"scenario", types.STRING}},
		[]column{
			{"tick", types.INT64},
			{"active_agents", types.INT64},
			{"aware_agents", types.INT64},
			{"system_load", types.FLOAT64},
			{"cumulative_failures", types.INT64},
			{"response_time", types.FLOAT64},
			{"public_perception", types.FLOAT64},
		})
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		err := tbl.AddRow(r.RunID, r.Scenario,
			int64(r.Tick), int64(r.ActiveAgents), int64(r.AwareAgents),
			r.SystemLoad, int64(r.CumulativeFailures), r.ResponseTime, r.Perception,
			r.Timestamp)
		if err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func eventsTable(name string, rows []telemetry.ViralEventRow) (*table.Table, error) {
	tbl, err := newTable(name,
		[]column{{"run_id", types.STRING}, {"scenario", types.STRING}, {"source_archetype", types.STRING}},
		[]column{
			{"tick", types.INT64},
			{"source_agent_id", types.INT64},
			{"affected_agent_id", types.INT64},
		})
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		err := tbl.AddRow(r.RunID, r.Scenario, r.SourceArchetype,
			int64(r.Tick), int64(r.SourceAgentID), int64(r.AffectedAgentID),
			r.Timestamp)
		if err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func summaryTable(name string, r telemetry.SummaryRow) (*table.Table, error) {
	tbl, err := newTable(name,
		[]column{{"run_id", types.STRING}, {"scenario", types.STRING}},
		[]column{
			{"failure_probability", types.FLOAT64},
			{"influence_multiplier", types.FLOAT64},
			{"population", types.INT64},
			{"ticks", types.INT64},
			{"peak_active", types.INT64},
			{"peak_load", types.FLOAT64},
			{"final_failures", types.INT64},
			{"final_perception", types.FLOAT64},
			{"mean_perception", types.FLOAT64},
			{"total_events", types.INT64},
			{"events_normal", types.INT64},
			{"events_critical", types.INT64},
			{"events_influencer", types.INT64},
		})
	if err != nil {
		return nil, err
	}
	err = tbl.AddRow(r.RunID, r.Scenario,
		r.FailureProbability, r.InfluenceMultiplier,
		int64(r.Population), int64(r.Ticks), int64(r.PeakActive), r.PeakLoad,
		int64(r.FinalFailures), r.FinalPerception, r.MeanPerception,
		int64(r.TotalEvents), int64(r.EventsNormal), int64(r.EventsCritical), int64(r.EventsInfluencer),
		r.Timestamp)
	if err != nil {
		return nil, err
	}
	return tbl, nil
}
