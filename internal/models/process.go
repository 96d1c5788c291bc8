package models

import (
	"fmt"
	"strings"
	"time"
)

// ProcessState is the coarse scheduler state of a process.
type ProcessState string

const (
	StateRunning  ProcessState = "running"
	StateSleeping ProcessState = "sleeping"
	StateStopped  ProcessState = "stopped"
	StateZombie   ProcessState = "zombie"
	StateUnknown  ProcessState = "unknown"
)

// StateFromStatus maps a gopsutil status string to a ProcessState.
func StateFromStatus(status string) ProcessState {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "running", "run":
		return StateRunning
	case "sleep", "sleeping", "idle", "wait", "waiting", "disk-sleep", "lock":
		return StateSleeping
	case "stop", "stopped", "tracing-stop":
		return StateStopped
	case "zombie":
		return StateZombie
	default:
		return StateUnknown
	}
}

// ProcessRecord is one process as seen at capture time. Records are immutable
// once captured; a new tick produces entirely new records. PIDs may be reused
// by the OS between ticks, so Identity (PID + start time) is the stable key,
// not PID alone.
type ProcessRecord struct {
	PID           int32        `json:"pid"`
	Name          string       `json:"name"`
	State         ProcessState `json:"state"`
	CPUPercent    float64      `json:"cpu_percent"`
	MemoryPercent float64      `json:"memory_percent"`
	StartTime     time.Time    `json:"start_time"`
	Owner         string       `json:"owner"`
	ThreadCount   int32        `json:"thread_count"`
	RunningTime   time.Duration `json:"-"`
	Runtime       string       `json:"runtime"`
}

// Identity returns the stable identity key for this record.
func (r ProcessRecord) Identity() Identity {
	return Identity{PID: r.PID, StartTime: r.StartTime}
}

// Identity identifies a process across snapshots. PID alone is advisory
// because the OS may recycle it; the start time disambiguates.
type Identity struct {
	PID       int32
	StartTime time.Time
}

// Snapshot is one point-in-time capture of all visible OS processes.
// It is owned by the tick that created it and never mutated after handoff.
type Snapshot struct {
	CapturedAt time.Time
	Records    []ProcessRecord
}

// FilterState is the live search/pagination state applied to each snapshot.
type FilterState struct {
	Query     string
	PageIndex int
	PageSize  int
}

// Page is a bounded slice of the filtered, sorted process list.
type Page struct {
	Records       []ProcessRecord `json:"records"`
	PageIndex     int             `json:"page_index"`
	TotalFiltered int             `json:"total_filtered"`
	TotalPages    int             `json:"total_pages"`
}

// FormatRuntime renders a duration as a compact "1h 2m 3s" string for the
// table's Duration column. Negative or zero durations render as "0s".
func FormatRuntime(d time.Duration) string {
	secs := int64(d.Seconds())
	if secs <= 0 {
		return "0s"
	}
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60
	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))
	return strings.Join(parts, " ")
}
