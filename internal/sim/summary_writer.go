package sim

import "viralsim/internal/telemetry"

// SummaryWriter handles the summary row emitted at the end of every run.
// The simulator discovers it on the telemetry or event writer.
type SummaryWriter interface {
	WriteSummary(telemetry.SummaryRow) error
}
