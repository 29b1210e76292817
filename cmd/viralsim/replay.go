package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"viralsim/internal/logging"
	"viralsim/internal/sim"
	"viralsim/internal/store"
)

var (
	replayInput     string
	replaySQLite    string
	replayRunID     string
	replayScenario  string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay recorded metrics",
	Long:  "replay feeds metrics rows from a JSONL log file, or one run of a SQLite database, back into GreptimeDB or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if (replayInput == "") == (replaySQLite == "") {
			return fmt.Errorf("exactly one of --input or --sqlite is required")
		}
		writer, err := newTelemetryWriter(replayPrintOnly)
		if err != nil {
			return err
		}
		log := logging.FromContext(cmd.Context())
		opts := sim.ReplayOptions{Speed: replaySpeed, RunID: replayRunID, Scenario: replayScenario}

		if replayInput != "" {
			n, err := sim.ReplayLogFile(replayInput, writer, opts)
			if err != nil {
				return fmt.Errorf("replay %s: %w", replayInput, err)
			}
			log.Info("replay complete", "input", replayInput, "rows", n)
			return nil
		}

		if replayRunID == "" {
			return fmt.Errorf("--run is required with --sqlite")
		}
		st, err := store.Open(replaySQLite)
		if err != nil {
			return err
		}
		defer st.Close()
		rows, err := st.Metrics(cmd.Context(), replayRunID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("run %s not found in %s", replayRunID, replaySQLite)
		}
		n, err := sim.ReplayRows(rows, writer, opts)
		if err != nil {
			return fmt.Errorf("replay run %s: %w", replayRunID, err)
		}
		log.Info("replay complete", "sqlite", replaySQLite, "run_id", replayRunID, "rows", n)
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to metrics log file (JSONL)")
	replayCmd.Flags().StringVar(&replaySQLite, "sqlite", "", "Path to a SQLite database written by --sqlite")
	replayCmd.Flags().StringVar(&replayRunID, "run", "", "Run id to replay (required with --sqlite, a filter for --input)")
	replayCmd.Flags().StringVar(&replayScenario, "scenario", "", "Replay only rows of this scenario")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 0, "Playback speed multiplier (0 replays without delay)")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print metrics to STDOUT instead of writing to GreptimeDB")
}
