package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"viralsim/internal/config"
	"viralsim/internal/logging"
)

var (
	logLevel   string
	configPath string
	schemaPath string
	seed       int64
	ticks      int
	population int
)

var rootCmd = &cobra.Command{
	Use:   "viralsim",
	Short: "Chatbot failure virality simulator",
	Long: "viralsim simulates how failures of an automated responder spread through a population of users\n" +
		"and feed back into its load, latency and public perception.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger := logging.New(logLevel, os.Stderr)
		slog.SetDefault(logger)
		cmd.SetContext(logging.NewContext(cmd.Context(), logger))
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	level := os.Getenv("VIRALSIM_LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", level, "Log level (trace, debug, info, warn, error)")

	for _, cmd := range []*cobra.Command{simulateCmd, scenariosCmd} {
		cmd.Flags().StringVar(&configPath, "config", "", "Path to simulation configuration YAML (defaults when empty)")
		cmd.Flags().StringVar(&schemaPath, "schema", "", "Path to CUE schema file (embedded schema when empty)")
		cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed overriding the configuration (0 keeps it)")
		cmd.Flags().IntVar(&ticks, "ticks", 0, "Number of ticks overriding the configuration")
		cmd.Flags().IntVar(&population, "population", 0, "Population size overriding the configuration")
		addOutputFlags(cmd)
	}

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(replayCmd)
}

// loadConfig reads the configuration file, or the defaults when none is
// given, and applies the command-line overrides that were set.
func loadConfig(cmd *cobra.Command) (*config.SimulationConfig, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath, schemaPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("population") {
		cfg.Population = population
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
