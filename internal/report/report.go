// Package report renders scenario comparisons and run breakdowns for the terminal.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/wordwrap"

	"viralsim/internal/agent"
	"viralsim/internal/telemetry"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	badStyle    = numberStyle.Foreground(lipgloss.Color("9"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

// SummaryTable renders one row per scenario run in the order given.
func SummaryTable(rows []telemetry.SummaryRow) string {
	headers := []string{"Scenario", "Fail p", "Influence x", "Max active", "Max load", "Failures", "Perception", "Mean perception", "Events"}
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			r.Scenario,
			strconv.FormatFloat(r.FailureProbability, 'f', 3, 64),
			strconv.FormatFloat(r.InfluenceMultiplier, 'f', 2, 64),
			strconv.Itoa(r.PeakActive),
			strconv.FormatFloat(r.PeakLoad, 'f', 2, 64),
			strconv.Itoa(r.FinalFailures),
			strconv.FormatFloat(r.FinalPerception, 'f', 3, 64),
			strconv.FormatFloat(r.MeanPerception, 'f', 3, 64),
			strconv.Itoa(r.TotalEvents),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			case col == 4 && row < len(rows) && rows[row].PeakLoad >= 1:
				return badStyle
			default:
				return numberStyle
			}
		})
	return t.String()
}

// Share is the portion of viralization events raised by one source archetype.
type Share struct {
	Archetype agent.Archetype
	Count     int
	Percent   float64
}

// Shares splits event counts by archetype, in archetype order. Percentages
// are zero when there are no events.
func Shares(counts map[agent.Archetype]int) []Share {
	total := 0
	for _, n := range counts {
		total += n
	}
	out := make([]Share, 0, len(agent.Archetypes))
	for _, a := range agent.Archetypes {
		s := Share{Archetype: a, Count: counts[a]}
		if total > 0 {
			s.Percent = 100 * float64(s.Count) / float64(total)
		}
		out = append(out, s)
	}
	return out
}

// SummaryCounts extracts the per-archetype event counts of a summary row.
func SummaryCounts(r telemetry.SummaryRow) map[agent.Archetype]int {
	return map[agent.Archetype]int{
		agent.ArchetypeNormal:     r.EventsNormal,
		agent.ArchetypeCritical:   r.EventsCritical,
		agent.ArchetypeInfluencer: r.EventsInfluencer,
	}
}

// ArchetypeBreakdown renders event counts and percentages per source archetype.
func ArchetypeBreakdown(counts map[agent.Archetype]int) string {
	shares := Shares(counts)
	data := make([][]string, 0, len(shares))
	total := 0
	for _, s := range shares {
		total += s.Count
		data = append(data, []string{s.Archetype.String(), strconv.Itoa(s.Count), fmt.Sprintf("%.1f%%", s.Percent)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Source", "Events", "Share").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			default:
				return numberStyle
			}
		})
	title := titleStyle.Render(fmt.Sprintf("Viralization events by source (%d total)", total))
	return lipgloss.JoinVertical(lipgloss.Left, title, t.String())
}

// Findings are the standing conclusions printed after a scenario comparison.
var Findings = []string{
	"Viralized failures can saturate the responder quickly.",
	"Influential users multiply the impact of each failure.",
	"Public perception deteriorates sharply as load rises.",
	"Mitigation should combine capacity scaling with moderation of the spread.",
}

// RenderFindings numbers the findings and wraps them at width. A width <= 0 disables wrapping.
func RenderFindings(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Findings"))
	b.WriteString("\n")
	for i, f := range Findings {
		line := fmt.Sprintf("%d. %s", i+1, f)
		if width > 0 {
			line = wordwrap.String(line, width)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Describe renders a titled, wrapped description block for a scenario set.
func Describe(name, description string, width int) string {
	if description == "" {
		return titleStyle.Render(name)
	}
	if width > 0 {
		description = wordwrap.String(description, width)
	}
	return titleStyle.Render(name) + "\n" + description
}

// Worst returns the run with the lowest final perception. ok is false for no rows.
func Worst(rows []telemetry.SummaryRow) (telemetry.SummaryRow, bool) {
	if len(rows) == 0 {
		return telemetry.SummaryRow{}, false
	}
	sorted := append([]telemetry.SummaryRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FinalPerception < sorted[j].FinalPerception
	})
	return sorted[0], true
}
