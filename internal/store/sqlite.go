// Package store persists simulation output in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"viralsim/internal/telemetry"
)

const timeLayout = time.RFC3339Nano

// SQLiteStore records metrics, events and run summaries. It satisfies the
// simulator's telemetry, event and summary writer interfaces.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}


// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Write stores a single metrics row.
func (s *SQLiteStore) Write(row telemetry.MetricsRow) error {
	return s.WriteBatch([]telemetry.MetricsRow{row})
}

// WriteBatch stores multiple metrics rows in one transaction.
func (s *SQLiteStore) WriteBatch(rows []telemetry.MetricsRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.inTx(context.Background(), func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT OR REPLACE INTO metrics
			(run_id, scenario, tick, active_agents, aware_agents, system_load, cumulative_failures, response_time, public_perception, ts)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.Exec(r.RunID, r.Scenario, r.Tick, r.ActiveAgents, r.AwareAgents,
				r.SystemLoad, r.CumulativeFailures, r.ResponseTime, r.Perception,
				r.Timestamp.UTC().Format(timeLayout)); err != nil {
				return fmt.Errorf("insert metrics tick %d: %w", r.Tick, err)
			}
		}
		return nil
	})
}

// WriteEvent stores a single event row.
func (s *SQLiteStore) WriteEvent(row telemetry.ViralEventRow) error {
	return s.WriteEvents([]telemetry.ViralEventRow{row})
}

// WriteEvents stores multiple event rows in one transaction.
func (s *SQLiteStore) WriteEvents(rows []telemetry.ViralEventRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.inTx(context.Background(), func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO events
			(run_id, scenario, tick, source_agent_id, affected_agent_id, source_archetype, ts)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.Exec(r.RunID, r.Scenario, r.Tick, r.SourceAgentID, r.AffectedAgentID,
				r.SourceArchetype, r.Timestamp.UTC().Format(timeLayout)); err != nil {
				return fmt.Errorf("insert event: %w", err)
			}
		}
		return nil
	})
}

// WriteSummary stores a run summary, replacing any earlier one for the run.
func (s *SQLiteStore) WriteSummary(r telemetry.SummaryRow) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO summaries
		(run_id, scenario, failure_probability, influence_multiplier, population, ticks,
		 peak_active, peak_load, final_failures, final_perception, mean_perception,
		 total_events, events_normal, events_critical, events_influencer, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Scenario, r.FailureProbability, r.InfluenceMultiplier, r.Population, r.Ticks,
		r.PeakActive, r.PeakLoad, r.FinalFailures, r.FinalPerception, r.MeanPerception,
		r.TotalEvents, r.EventsNormal, r.EventsCritical, r.EventsInfluencer,
		r.Timestamp.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert summary %s: %w", r.RunID, err)
	}
	return nil
}

// Summaries returns every stored run summary, oldest first.
func (s *SQLiteStore) Summaries(ctx context.Context) ([]telemetry.SummaryRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, scenario, failure_probability, influence_multiplier,
		population, ticks, peak_active, peak_load, final_failures, final_perception, mean_perception,
		total_events, events_normal, events_critical, events_influencer, ts
		FROM summaries ORDER BY ts, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var out []telemetry.SummaryRow
	for rows.Next() {
		var r telemetry.SummaryRow
		var ts string
		if err := rows.Scan(&r.RunID, &r.Scenario, &r.FailureProbability, &r.InfluenceMultiplier,
			&r.Population, &r.Ticks, &r.PeakActive, &r.PeakLoad, &r.FinalFailures, &r.FinalPerception,
			&r.MeanPerception, &r.TotalEvents, &r.EventsNormal, &r.EventsCritical, &r.EventsInfluencer, &ts); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		if r.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("parse summary timestamp: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Metrics returns the metrics rows of one run ordered by tick.
func (s *SQLiteStore) Metrics(ctx context.Context, runID string) ([]telemetry.MetricsRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, scenario, tick, active_agents, aware_agents,
		system_load, cumulative_failures, response_time, public_perception, ts
		FROM metrics WHERE run_id = ? ORDER BY tick`, runID)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var out []telemetry.MetricsRow
	for rows.Next() {
		var r telemetry.MetricsRow
		var ts string
		if err := rows.Scan(&r.RunID, &r.Scenario, &r.Tick, &r.ActiveAgents, &r.AwareAgents,
			&r.SystemLoad, &r.CumulativeFailures, &r.ResponseTime, &r.Perception, &ts); err != nil {
			return nil, fmt.Errorf("scan metrics: %w", err)
		}
		if r.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("parse metrics timestamp: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// EventCount returns the number of stored events for a run.
func (s *SQLiteStore) EventCount(ctx context.Context, runID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE run_id = ?`, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
