package models

import "time"

// SystemSummary captures host-level resource usage sampled for the dashboard
// header cards.
type SystemSummary struct {
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	MemoryUsed    uint64    `json:"memory_used_bytes"`
	MemoryTotal   uint64    `json:"memory_total_bytes"`
	Load1         float64   `json:"load1"`
	Load5         float64   `json:"load5"`
	Load15        float64   `json:"load15"`
	UptimeSeconds uint64    `json:"uptime_seconds"`
	ProcessCount  int       `json:"process_count"`
	SampledAt     time.Time `json:"sampled_at"`
}

// UsagePoint is one aggregate sample appended to the rolling usage series.
type UsagePoint struct {
	At            time.Time `json:"at"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
}

// UsageSeries is the serializable view of the rolling usage window, shaped
// for the two time-series chart sinks. The three slices always have equal
// length.
type UsageSeries struct {
	Timestamps   []time.Time `json:"timestamps"`
	CPUValues    []float64   `json:"cpu_values"`
	MemoryValues []float64   `json:"memory_values"`
}

// Notice is a transient, non-fatal message surfaced in the UI feed.
type Notice struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

const (
	NoticeKindInfo    = "info"
	NoticeKindSuccess = "success"
	NoticeKindWarning = "warning"
	NoticeKindDanger  = "danger"
)
