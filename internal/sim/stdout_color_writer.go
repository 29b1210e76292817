// ColorStdoutWriter prints human-friendly, colorized metrics to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"viralsim/internal/agent"
	"viralsim/internal/config"
	"viralsim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints metrics rows using ANSI colors.
type ColorStdoutWriter struct {
	cfg            *config.SimulationConfig
	out            io.Writer
	once           sync.Once
	scenarioColors map[string]string
	colorIdx       int
}

var scenarioPalette = []string{colorGreen, colorYellow, colorMagenta, colorRed, colorBlue, colorCyan}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{
		cfg:            cfg,
		out:            os.Stdout,
		scenarioColors: make(map[string]string),
	}
}

func (w *ColorStdoutWriter) scenarioColor(name string) string {
	if c, ok := w.scenarioColors[name]; ok {
		return c
	}
	c := scenarioPalette[w.colorIdx%len(scenarioPalette)]
	w.scenarioColors[name] = c
	w.colorIdx++
	return c
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}

	fmt.Fprintln(w.out, "Simulation Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Population:\t%d\n", w.cfg.Population)
	fmt.Fprintf(tw, "Ticks:\t%d\n", w.cfg.Ticks)
	fmt.Fprintf(tw, "Seed:\t%d\n", w.cfg.Seed)
	fmt.Fprintf(tw, "Max Capacity:\t%d\n", w.cfg.Responder.MaxCapacity)
	fmt.Fprintf(tw, "Base Response Time:\t%.2f\n", w.cfg.Responder.BaseResponseTime)
	fmt.Fprintf(tw, "Failure Probability:\t%.3f\n", w.cfg.Responder.FailureProbability)
	tw.Flush()

	if len(w.cfg.Scenarios) > 0 {
		fmt.Fprintln(w.out, "\nScenarios:")
		tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Name\tFailure Prob\tInfluence x\n")
		for _, s := range w.cfg.Scenarios {
			col := w.scenarioColor(s.Name)
			fmt.Fprintf(tw, "%s%s%s\t%.3f\t%.2f\n", col, s.Name, colorReset, s.FailureProbability, s.InfluenceMultiplier)
		}
		tw.Flush()
	}
	fmt.Fprintln(w.out)
}

func loadColor(load float64) string {
	switch {
	case load >= 0.8:
		return colorRed
	case load >= 0.5:
		return colorYellow
	default:
		return colorGreen
	}
}

func perceptionColor(p float64) string {
	switch {
	case p < 0.5:
		return colorRed
	case p < 0.8:
		return colorYellow
	default:
		return colorGreen
	}
}

// Write outputs a single metrics row in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.MetricsRow) error {
	w.once.Do(w.printOverview)

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%sscenario=%s%s ", w.scenarioColor(row.Scenario), row.Scenario, colorReset)
	fmt.Fprintf(w.out, "%stick=%d%s ", colorBlue, row.Tick, colorReset)
	fmt.Fprintf(w.out, "%sactive=%d%s ", colorMagenta, row.ActiveAgents, colorReset)
	fmt.Fprintf(w.out, "%saware=%d%s ", colorCyan, row.AwareAgents, colorReset)
	fmt.Fprintf(w.out, "%sload=%.2f%s ", loadColor(row.SystemLoad), row.SystemLoad, colorReset)
	fmt.Fprintf(w.out, "%srt=%.2f%s ", colorYellow, row.ResponseTime, colorReset)
	fmt.Fprintf(w.out, "%sfailures=%d%s ", colorRed, row.CumulativeFailures, colorReset)
	fmt.Fprintf(w.out, "%sperception=%.3f%s", perceptionColor(row.Perception), row.Perception, colorReset)
	fmt.Fprintln(w.out)
	return nil
}

// WriteBatch outputs multiple metrics rows.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.MetricsRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteEvent prints a single viralization event.
func (w *ColorStdoutWriter) WriteEvent(e telemetry.ViralEventRow) error {
	return w.WriteEvents([]telemetry.ViralEventRow{e})
}

// WriteEvents prints one line per source agent, with the agents it reached.
func (w *ColorStdoutWriter) WriteEvents(rows []telemetry.ViralEventRow) error {
	if len(rows) == 0 {
		return nil
	}
	w.once.Do(w.printOverview)

	start := 0
	for i := 1; i <= len(rows); i++ {
		if i < len(rows) && rows[i].SourceAgentID == rows[start].SourceAgentID {
			continue
		}
		src := rows[start]
		col := colorYellow
		if src.SourceArchetype == agent.ArchetypeInfluencer.String() {
			col = colorRed
		}
		fmt.Fprintf(w.out, "%s[%s]%s %sVIRAL%s tick=%d source=%d archetype=%s reached=%d\n",
			colorGray, src.Timestamp.Format(time.RFC3339), colorReset,
			col, colorReset, src.Tick, src.SourceAgentID, src.SourceArchetype, i-start)
		start = i
	}
	return nil
}

// WriteSummary prints the end-of-run summary line.
func (w *ColorStdoutWriter) WriteSummary(row telemetry.SummaryRow) error {
	w.once.Do(w.printOverview)
	fmt.Fprintf(w.out, "%sSUMMARY%s %sscenario=%s%s peak_active=%d peak_load=%.2f failures=%d %sperception=%.3f%s events=%d\n",
		colorBlue, colorReset,
		w.scenarioColor(row.Scenario), row.Scenario, colorReset,
		row.PeakActive, row.PeakLoad, row.FinalFailures,
		perceptionColor(row.FinalPerception), row.FinalPerception, colorReset,
		row.TotalEvents)
	return nil
}
