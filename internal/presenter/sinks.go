package presenter

import "procwatch/internal/models"

// Display sinks receive already-prepared data once per tick. The web layer
// implements them by broadcasting frames to connected browsers; tests plug in
// recorders. All sinks are optional; a nil sink is skipped.

// TableSink receives the current page of the process table.
type TableSink interface {
	PushPage(models.Page)
}

// ChartSink receives the rolling usage window for the CPU and memory charts.
type ChartSink interface {
	PushSeries(models.UsageSeries)
}

// SummarySink receives host-level usage for the header cards.
type SummarySink interface {
	PushSummary(models.SystemSummary)
}

// DetailSink receives the selected process, or nil to blank the detail view.
type DetailSink interface {
	PushDetail(*models.ProcessRecord)
}

// NoticeSink receives transient, non-fatal user-visible notices.
type NoticeSink interface {
	PushNotice(models.Notice)
}

// Sinks bundles the display sinks wired into a Presenter.
type Sinks struct {
	Table   TableSink
	Charts  ChartSink
	Summary SummarySink
	Detail  DetailSink
	Notices NoticeSink
}
