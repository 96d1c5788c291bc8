package sampler

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"procwatch/internal/models"
)

// Sampler reads the OS process table and host usage via gopsutil, and issues
// termination signals. It keeps the previous CPU times sample so system CPU%
// can be derived from deltas between ticks.
type Sampler struct {
	mu           sync.Mutex
	lastCPUTotal float64
	lastCPUIdle  float64
}

// New returns a ready Sampler.
func New() *Sampler {
	return &Sampler{}
}

// Capture enumerates all visible processes into a fresh Snapshot. Processes
// whose attributes cannot be read (permission denial, racing exit) are
// silently omitted; only a failure to list the process table itself is an
// error.
func (s *Sampler) Capture(ctx context.Context) (*models.Snapshot, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}
	now := time.Now()
	records := make([]models.ProcessRecord, 0, len(procs))
	for _, p := range procs {
		rec, ok := collectRecord(ctx, p, now)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return &models.Snapshot{CapturedAt: now, Records: records}, nil
}

func collectRecord(ctx context.Context, p *process.Process, now time.Time) (models.ProcessRecord, bool) {
	name, err := p.NameWithContext(ctx)
	if err != nil || name == "" {
		return models.ProcessRecord{}, false
	}

	rec := models.ProcessRecord{
		PID:   p.Pid,
		Name:  name,
		State: models.StateUnknown,
	}

	if statuses, err := p.StatusWithContext(ctx); err == nil && len(statuses) > 0 {
		rec.State = models.StateFromStatus(statuses[0])
	}
	if cpuPct, err := p.CPUPercentWithContext(ctx); err == nil && cpuPct > 0 {
		rec.CPUPercent = cpuPct
	}
	if memPct, err := p.MemoryPercentWithContext(ctx); err == nil && memPct > 0 {
		rec.MemoryPercent = float64(memPct)
	}
	if owner, err := p.UsernameWithContext(ctx); err == nil {
		rec.Owner = owner
	}
	rec.ThreadCount = 1
	if threads, err := p.NumThreadsWithContext(ctx); err == nil && threads > 1 {
		rec.ThreadCount = threads
	}
	if startMillis, err := p.CreateTimeWithContext(ctx); err == nil && startMillis > 0 {
		rec.StartTime = time.UnixMilli(startMillis)
		if now.After(rec.StartTime) {
			rec.RunningTime = now.Sub(rec.StartTime)
		}
	}
	if rec.StartTime.IsZero() {
		rec.Runtime = "n/a"
	} else {
		rec.Runtime = models.FormatRuntime(rec.RunningTime)
	}
	return rec, true
}

// Terminate sends a termination signal to pid and returns without waiting
// for the process to exit. The next Capture simply reflects whatever the OS
// reports afterwards.
func (s *Sampler) Terminate(ctx context.Context, pid int32) error {
	if pid <= 0 {
		return ErrProcessNotFound
	}
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return classifyTerminationError(err)
	}
	if err := p.TerminateWithContext(ctx); err != nil {
		return classifyTerminationError(err)
	}
	return nil
}

// SystemSummary samples host-level usage for the header cards and the rolling
// charts. Individual probe failures degrade to zero values; the summary
// itself never fails once a CPU times sample is available.
func (s *Sampler) SystemSummary(ctx context.Context) (models.SystemSummary, error) {
	timesStats, err := cpu.TimesWithContext(ctx, false)
	if err != nil || len(timesStats) == 0 {
		return models.SystemSummary{}, fmt.Errorf("read cpu times: %w", err)
	}
	total := cpuTotal(timesStats[0])
	idle := timesStats[0].Idle + timesStats[0].Iowait
	deltaTotal, deltaIdle, hasPrev := s.updateCPUSample(total, idle)

	var cpuPercent float64
	if hasPrev && deltaTotal > 0 {
		used := deltaTotal - deltaIdle
		if used < 0 {
			used = 0
		}
		cpuPercent = clampFloat((used/deltaTotal)*100, 0, 100)
	}

	summary := models.SystemSummary{
		CPUPercent: cpuPercent,
		SampledAt:  time.Now(),
	}

	if memoryStats, err := mem.VirtualMemoryWithContext(ctx); err == nil && memoryStats != nil {
		summary.MemoryPercent = clampFloat(memoryStats.UsedPercent, 0, 100)
		summary.MemoryUsed = memoryStats.Used
		summary.MemoryTotal = memoryStats.Total
	}
	if loadStats, err := load.AvgWithContext(ctx); err == nil && loadStats != nil {
		summary.Load1 = loadStats.Load1
		summary.Load5 = loadStats.Load5
		summary.Load15 = loadStats.Load15
	}
	if hostInfo, err := host.InfoWithContext(ctx); err == nil && hostInfo != nil {
		summary.UptimeSeconds = hostInfo.Uptime
		summary.ProcessCount = int(hostInfo.Procs)
	}
	return summary, nil
}

func (s *Sampler) updateCPUSample(total, idle float64) (float64, float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deltaTotal := total - s.lastCPUTotal
	deltaIdle := idle - s.lastCPUIdle
	hasPrev := s.lastCPUTotal > 0
	s.lastCPUTotal = total
	s.lastCPUIdle = idle
	return deltaTotal, deltaIdle, hasPrev
}

func cpuTotal(stat cpu.TimesStat) float64 {
	return stat.User + stat.System + stat.Nice + stat.Idle + stat.Iowait +
		stat.Irq + stat.Softirq + stat.Steal + stat.Guest + stat.GuestNice
}

func clampFloat(val, min, max float64) float64 {
	if math.IsNaN(val) {
		return min
	}
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
