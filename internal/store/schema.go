package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metrics (
    run_id TEXT NOT NULL,
    scenario TEXT NOT NULL,
    tick INTEGER NOT NULL,
    active_agents INTEGER NOT NULL,
    aware_agents INTEGER NOT NULL,
    system_load REAL NOT NULL,
    cumulative_failures INTEGER NOT NULL,
    response_time REAL NOT NULL,
    public_perception REAL NOT NULL,
    ts TEXT NOT NULL,
    PRIMARY KEY (run_id, tick)
);

CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    scenario TEXT NOT NULL,
    tick INTEGER NOT NULL,
    source_agent_id INTEGER NOT NULL,
    affected_agent_id INTEGER NOT NULL,
    source_archetype TEXT NOT NULL,
    ts TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, tick);

CREATE TABLE IF NOT EXISTS summaries (
    run_id TEXT PRIMARY KEY,
    scenario TEXT NOT NULL,
    failure_probability REAL NOT NULL,
    influence_multiplier REAL NOT NULL,
    population INTEGER NOT NULL,
    ticks INTEGER NOT NULL,
    peak_active INTEGER NOT NULL,
    peak_load REAL NOT NULL,
    final_failures INTEGER NOT NULL,
    final_perception REAL NOT NULL,
    mean_perception REAL NOT NULL,
    total_events INTEGER NOT NULL,
    events_normal INTEGER NOT NULL,
    events_critical INTEGER NOT NULL,
    events_influencer INTEGER NOT NULL,
    ts TEXT NOT NULL
);
`

// InitSchema creates the schema on a fresh database and leaves an existing one untouched.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := getSchemaVersion(ctx, db); err == nil {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return tx.Commit()
}

func getSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}
