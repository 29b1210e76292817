package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"viralsim/internal/config"
	"viralsim/internal/logging"
	"viralsim/internal/report"
	"viralsim/internal/scenario"
	"viralsim/internal/sim"
)

const reportWidth = 80

var (
	scenarioSet string
	independent bool
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Run a scenario comparison",
	Long: "scenarios runs every scenario of a set on one population, resetting between runs, and prints a comparison.\n" +
		"The set is taken from --scenarios (a built-in name or a YAML file), then from the configuration file,\n" +
		"then the built-in \"" + scenario.DefaultSet + "\" set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		set, err := resolveSet(cfg)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("independent") {
			set.Independent = independent
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
		results, err := simulator.RunScenarios(cmd.Context(), set)
		if err != nil {
			return err
		}

		out := cmd.ErrOrStderr()
		fmt.Fprintln(out, report.Describe(set.Name, set.Description, reportWidth))
		fmt.Fprintln(out, report.SummaryTable(results))
		if worst, ok := report.Worst(results); ok {
			fmt.Fprintf(out, "Worst perception: %s\n", worst.Scenario)
			fmt.Fprintln(out, report.ArchetypeBreakdown(report.SummaryCounts(worst)))
		}
		fmt.Fprintln(out, report.RenderFindings(reportWidth))
		logging.FromContext(cmd.Context()).Debug("scenario comparison finished", "set", set.Name, "runs", len(results))
		return nil
	},
}

func resolveSet(cfg *config.SimulationConfig) (*scenario.Set, error) {
	if scenarioSet != "" {
		return scenario.Resolve(scenarioSet)
	}
	if set, ok := cfg.ScenarioSet(); ok {
		return set, nil
	}
	return scenario.Resolve(scenario.DefaultSet)
}

func init() {
	scenariosCmd.Flags().StringVar(&scenarioSet, "scenarios", "", "Built-in scenario set name or path to a scenario set YAML")
	scenariosCmd.Flags().BoolVar(&independent, "independent", false, "Apply each influence multiplier to the original influence instead of compounding")
}
