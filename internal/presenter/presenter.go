package presenter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"procwatch/internal/models"
	"procwatch/internal/processor"
	"procwatch/internal/sampler"
	"procwatch/internal/utils"
)

var (
	// ErrNoSelection reports a terminate request with nothing selected.
	ErrNoSelection = errors.New("no process selected")

	// ErrNotVisible reports a selection target absent from the current page.
	ErrNotVisible = errors.New("process not visible on current page")
)

// Sampler is the process-control capability the presenter drives.
type Sampler interface {
	Capture(ctx context.Context) (*models.Snapshot, error)
	Terminate(ctx context.Context, pid int32) error
	SystemSummary(ctx context.Context) (models.SystemSummary, error)
}

// Options are the presenter's startup-fixed settings.
type Options struct {
	Interval       time.Duration
	PageSize       int
	WindowCapacity int
}

// Presenter drives the refresh loop: each tick captures a snapshot, filters
// and pages it, appends to the rolling usage series, and pushes the results
// into the display sinks. User actions mutate the filter/selection state
// under the presenter mutex and take effect on the next tick.
//
// At most one tick is ever in flight; a tick that fires while another is
// still refreshing is skipped, not queued.
type Presenter struct {
	sampler  Sampler
	sinks    Sinks
	log      *utils.Logger
	interval time.Duration

	mu          sync.Mutex
	filter      models.FilterState
	series      *processor.Series
	selected    *models.Identity
	lastPage    models.Page
	lastSummary models.SystemSummary
	lastDetail  *models.ProcessRecord

	inFlight atomic.Bool

	loopMu sync.Mutex
	stop   chan struct{}
	wg     sync.WaitGroup
}

// New wires a presenter. The sampler is required; sinks may be partially nil.
func New(s Sampler, sinks Sinks, opts Options, log *utils.Logger) *Presenter {
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = 1
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Presenter{
		sampler:  s,
		sinks:    sinks,
		log:      log,
		interval: interval,
		filter:   models.FilterState{PageSize: pageSize},
		series:   processor.NewSeries(opts.WindowCapacity),
	}
}

// Start launches the refresh loop. Calling Start on a running presenter is a
// no-op.
func (p *Presenter) Start() {
	p.loopMu.Lock()
	if p.stop != nil {
		p.loopMu.Unlock()
		return
	}
	stop := make(chan struct{})
	p.stop = stop
	p.loopMu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		ctx := context.Background()
		_ = p.Refresh(ctx)
		for {
			select {
			case <-ticker.C:
				_ = p.Refresh(ctx)
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts the refresh loop and waits for the current tick to finish.
func (p *Presenter) Stop() {
	p.loopMu.Lock()
	stop := p.stop
	p.stop = nil
	p.loopMu.Unlock()
	if stop != nil {
		close(stop)
	}
	p.wg.Wait()
}

// Refresh performs one tick: capture, filter and page, series append, sink
// push. It returns nil immediately when another tick is already in flight.
// A failed capture is logged and surfaced as a notice; it never stops the
// loop, and the next scheduled tick is an independent attempt.
func (p *Presenter) Refresh(ctx context.Context) error {
	if !p.inFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer p.inFlight.Store(false)

	snapshot, err := p.sampler.Capture(ctx)
	if err != nil {
		p.log.Writef("capture failed: %v", err)
		p.notify(models.NoticeKindWarning, "Sampling failed", err.Error())
		return err
	}

	summary, sumErr := p.sampler.SystemSummary(ctx)
	if sumErr != nil {
		p.log.Writef("system summary failed: %v", sumErr)
	} else {
		summary.ProcessCount = len(snapshot.Records)
	}

	p.mu.Lock()
	page := processor.FilterAndPage(snapshot, p.filter)
	p.filter.PageIndex = page.PageIndex
	if sumErr == nil {
		p.series.Append(models.UsagePoint{
			At:            summary.SampledAt,
			CPUPercent:    summary.CPUPercent,
			MemoryPercent: summary.MemoryPercent,
		})
		p.lastSummary = summary
	} else {
		summary = p.lastSummary
	}
	detail := p.resolveSelectionLocked(page)
	seriesView := p.series.View()
	p.lastPage = page
	p.lastDetail = detail
	p.mu.Unlock()

	// Snapshot ownership ends here; only the derived page and series persist.
	p.pushPage(page)
	p.pushSeries(seriesView)
	if sumErr == nil {
		p.pushSummary(summary)
	}
	p.pushDetail(detail)
	return nil
}

// resolveSelectionLocked re-resolves the selected identity against the newest
// page. A selected process that exited or was filtered out clears the
// selection so the detail view never shows stale data. Matching uses
// PID + start time because the OS may recycle PIDs between ticks.
func (p *Presenter) resolveSelectionLocked(page models.Page) *models.ProcessRecord {
	if p.selected == nil {
		return nil
	}
	for _, rec := range page.Records {
		if rec.PID == p.selected.PID && rec.StartTime.Equal(p.selected.StartTime) {
			found := rec
			return &found
		}
	}
	p.selected = nil
	return nil
}

// Search replaces the filter query and resets pagination. The new filter is
// applied on the next tick.
func (p *Presenter) Search(query string) {
	query = strings.TrimSpace(query)
	p.mu.Lock()
	defer p.mu.Unlock()
	if query == p.filter.Query {
		return
	}
	p.filter.Query = query
	p.filter.PageIndex = 0
}

// NextPage advances to the next page when one exists.
func (p *Presenter) NextPage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.filter.PageIndex+1 < p.lastPage.TotalPages {
		p.filter.PageIndex++
	}
}

// PrevPage moves back one page when possible.
func (p *Presenter) PrevPage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.filter.PageIndex > 0 {
		p.filter.PageIndex--
	}
}

// Select marks the process with the given PID, which must be visible on the
// current page, as selected and returns its record.
func (p *Presenter) Select(pid int32) (models.ProcessRecord, error) {
	p.mu.Lock()
	var found *models.ProcessRecord
	for i := range p.lastPage.Records {
		if p.lastPage.Records[i].PID == pid {
			rec := p.lastPage.Records[i]
			found = &rec
			break
		}
	}
	if found == nil {
		p.mu.Unlock()
		return models.ProcessRecord{}, fmt.Errorf("select pid %d: %w", pid, ErrNotVisible)
	}
	identity := found.Identity()
	p.selected = &identity
	p.lastDetail = found
	p.mu.Unlock()

	p.pushDetail(found)
	return *found, nil
}

// Deselect clears the selection and blanks the detail view.
func (p *Presenter) Deselect() {
	p.mu.Lock()
	p.selected = nil
	p.lastDetail = nil
	p.mu.Unlock()
	p.pushDetail(nil)
}

// Selection returns a copy of the selected record, or nil when nothing is
// selected.
func (p *Presenter) Selection() *models.ProcessRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastDetail == nil {
		return nil
	}
	rec := *p.lastDetail
	return &rec
}

// CurrentPage returns the page computed by the most recent tick.
func (p *Presenter) CurrentPage() models.Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPage
}

// Series returns a copy of the rolling usage window.
func (p *Presenter) Series() models.UsageSeries {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.series.View()
}

// Summary returns the most recent host usage summary.
func (p *Presenter) Summary() models.SystemSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSummary
}

// Terminate issues a fire-and-forget termination signal. A target that is
// already gone counts as success; the row disappears on the next tick rather
// than being optimistically removed, so a stale PID is never shown as gone
// when termination in fact failed. Selection and page state are untouched.
func (p *Presenter) Terminate(ctx context.Context, pid int32) error {
	err := p.sampler.Terminate(ctx, pid)
	switch {
	case err == nil:
		p.notify(models.NoticeKindSuccess, "Termination signal sent",
			fmt.Sprintf("Sent termination signal to PID %d.", pid))
		return nil
	case errors.Is(err, sampler.ErrProcessNotFound):
		p.notify(models.NoticeKindInfo, "Process already exited",
			fmt.Sprintf("PID %d no longer exists.", pid))
		return nil
	case errors.Is(err, sampler.ErrPermissionDenied):
		p.log.Writef("terminate pid %d: permission denied", pid)
		p.notify(models.NoticeKindDanger, "Permission denied",
			fmt.Sprintf("Not allowed to terminate PID %d.", pid))
		return err
	default:
		p.log.Writef("terminate pid %d: %v", pid, err)
		p.notify(models.NoticeKindDanger, "Termination failed", err.Error())
		return err
	}
}

// TerminateSelected terminates the currently selected process.
func (p *Presenter) TerminateSelected(ctx context.Context) error {
	p.mu.Lock()
	selected := p.selected
	p.mu.Unlock()
	if selected == nil {
		return ErrNoSelection
	}
	return p.Terminate(ctx, selected.PID)
}

func (p *Presenter) notify(kind, title, message string) {
	if p.sinks.Notices == nil {
		return
	}
	p.sinks.Notices.PushNotice(models.Notice{Kind: kind, Title: title, Message: message})
}

func (p *Presenter) pushPage(page models.Page) {
	if p.sinks.Table != nil {
		p.sinks.Table.PushPage(page)
	}
}

func (p *Presenter) pushSeries(series models.UsageSeries) {
	if p.sinks.Charts != nil {
		p.sinks.Charts.PushSeries(series)
	}
}

func (p *Presenter) pushSummary(summary models.SystemSummary) {
	if p.sinks.Summary != nil {
		p.sinks.Summary.PushSummary(summary)
	}
}

func (p *Presenter) pushDetail(detail *models.ProcessRecord) {
	if p.sinks.Detail != nil {
		p.sinks.Detail.PushDetail(detail)
	}
}
