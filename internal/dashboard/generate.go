// Package dashboard renders a Grafana dashboard for the GreptimeDB tables the simulator writes.
package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"viralsim/internal/metrics"
	"viralsim/internal/sim"
)

//go:embed *.json.tmpl
var templates embed.FS

var templateFiles = []string{
	"grafana-dashboard.json.tmpl",
}

// Panel is one time-series panel plotting a metrics column.
type Panel struct {
	Title  string
	Column string
}

type dashboardData struct {
	MetricsTable string
	EventsTable  string
	SummaryTable string
	Panels       []Panel
}

func defaultData() dashboardData {
	titles := map[string]string{
		metrics.ActiveAgents:       "Reporting users",
		metrics.AwareAgents:        "Aware users",
		metrics.SystemLoad:         "Responder load",
		metrics.CumulativeFailures: "Cumulative failures",
		metrics.ResponseTime:       "Response time",
		metrics.PublicPerception:   "Public perception",
	}
	panels := make([]Panel, 0, len(metrics.Names))
	for _, name := range metrics.Names {
		panels = append(panels, Panel{Title: titles[name], Column: name})
	}
	return dashboardData{
		MetricsTable: sim.DefaultMetricsTable,
		EventsTable:  sim.DefaultEventsTable,
		SummaryTable: sim.DefaultSummaryTable,
		Panels:       panels,
	}
}

// Render writes the rendered dashboards to outDir. GREPTIMEDB_DATASOURCE_UID
// must be set; the GREPTIMEDB_*_TABLE variables override the table names.
func Render(outDir string) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
		"envOr": func(key, fallback string) string {
			if v := os.Getenv(key); v != "" {
				return v
			}
			return fallback
		},
		"inc": func(i int) int { return i + 1 },
		"col": func(i int) int { return (i % 2) * 12 },
		"row": func(i int) int { return (i / 2) * 8 },
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	data := defaultData()
	for _, tplName := range templateFiles {
		t, err := template.New(tplName).Funcs(funcMap).ParseFS(templates, tplName)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(tplName, ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, data); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
