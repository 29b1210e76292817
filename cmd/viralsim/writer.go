package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"viralsim/internal/config"
	"viralsim/internal/sim"
	"viralsim/internal/store"
)

const (
	defaultGreptimePort     = 4001
	defaultGreptimeDatabase = "public"
)

// sink receives every kind of output row.
type sink interface {
	sim.TelemetryWriter
	sim.EventWriter
	sim.SummaryWriter
}

// outputOptions selects the writers a run feeds besides STDOUT or GreptimeDB.
type outputOptions struct {
	printOnly  bool
	logFile    string
	csvDir     string
	sqlitePath string
}

var outputOpts outputOptions

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&outputOpts.printOnly, "print-only", false, "Print output to STDOUT instead of writing to GreptimeDB")
	cmd.Flags().StringVar(&outputOpts.logFile, "log-file", "", "Path to export metrics logs (JSONL); events and summaries go to .events and .summary siblings")
	cmd.Flags().StringVar(&outputOpts.csvDir, "csv-dir", "", "Directory to export metrics, events and summaries as CSV")
	cmd.Flags().StringVar(&outputOpts.sqlitePath, "sqlite", "", "Path to a SQLite database recording every run")
}

// newWriters sets up metrics and event writers based on flags and env vars.
// It returns the writers and a cleanup function to close any resources.
func newWriters(cfg *config.SimulationConfig, opts outputOptions) (sim.TelemetryWriter, sim.EventWriter, func(), error) {
	base, err := baseWriter(cfg, opts.printOnly)
	if err != nil {
		return nil, nil, nil, err
	}
	if opts.logFile == "" && opts.csvDir == "" && opts.sqlitePath == "" {
		return base, base, func() {}, nil
	}

	sinks := []sink{base}
	closeAll := func() {
		for _, s := range sinks {
			if c, ok := s.(interface{ Close() error }); ok {
				c.Close()
			}
		}
	}
	if opts.logFile != "" {
		fw, err := sim.NewFileWriter(opts.logFile, opts.logFile+".events", opts.logFile+".summary")
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		sinks = append(sinks, fw)
	}
	if opts.csvDir != "" {
		cw, err := sim.NewCSVWriter(opts.csvDir)
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		sinks = append(sinks, cw)
	}
	if opts.sqlitePath != "" {
		st, err := store.Open(opts.sqlitePath)
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		sinks = append(sinks, st)
	}

	tws := make([]sim.TelemetryWriter, len(sinks))
	ews := make([]sim.EventWriter, len(sinks))
	for i, s := range sinks {
		tws[i], ews[i] = s, s
	}
	mw := sim.NewMultiWriter(tws, ews)
	return mw, mw, func() { mw.Close() }, nil
}

// baseWriter chooses STDOUT or GreptimeDB based on the printOnly flag and env vars.
func baseWriter(cfg *config.SimulationConfig, printOnly bool) (sink, error) {
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	if printOnly || endpoint == "" {
		return sim.NewStdoutWriter(cfg), nil
	}

	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = defaultGreptimeDatabase
	}
	return sim.NewGreptimeDBWriter(host, port, database, sim.GreptimeTables{
		Metrics: os.Getenv("GREPTIMEDB_METRICS_TABLE"),
		Events:  os.Getenv("GREPTIMEDB_EVENTS_TABLE"),
		Summary: os.Getenv("GREPTIMEDB_SUMMARY_TABLE"),
	})
}

// splitEndpoint parses host[:port]; the gRPC port defaults to 4001.
func splitEndpoint(endpoint string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		var addrErr *net.AddrError
		if errors.As(err, &addrErr) && addrErr.Err == "missing port in address" {
			return endpoint, defaultGreptimePort, nil
		}
		return "", 0, fmt.Errorf("invalid GREPTIMEDB_ENDPOINT %q: %w", endpoint, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return "", 0, fmt.Errorf("invalid GREPTIMEDB_ENDPOINT port %q", portStr)
	}
	return host, port, nil
}

// newTelemetryWriter creates a metrics writer without the file sinks.
func newTelemetryWriter(printOnly bool) (sim.TelemetryWriter, error) {
	return baseWriter(nil, printOnly)
}

