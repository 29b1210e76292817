package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"viralsim/internal/logging"
	"viralsim/internal/report"
	"viralsim/internal/sim"
	"viralsim/internal/telemetry"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one simulation",
	Long:  "simulate runs the configured population for the configured number of ticks and emits per-tick metrics and viralization events.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		writer, eventWriter, cleanup, err := newWriters(cfg, outputOpts)
		if err != nil {
			return err
		}
		defer cleanup()

		simulator, err := sim.NewSimulator(cfg, writer, eventWriter, nil)
		if err != nil {
			return err
		}
		simulator.Run(cmd.Context())

		sum := simulator.Summary()
		out := cmd.ErrOrStderr()
		fmt.Fprintln(out, report.SummaryTable([]telemetry.SummaryRow{sum}))
		fmt.Fprintln(out, report.ArchetypeBreakdown(simulator.EventsByArchetype()))
		logging.FromContext(cmd.Context()).Debug("simulation finished", "run_id", simulator.RunID(), "seed", simulator.Seed())
		return nil
	},
}
