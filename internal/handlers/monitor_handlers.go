package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"procwatch/internal/models"
	"procwatch/internal/presenter"
	"procwatch/internal/sampler"
	"procwatch/internal/utils"
	"procwatch/internal/version"
)

// Monitor is the slice of the presenter the HTTP layer drives.
type Monitor interface {
	CurrentPage() models.Page
	Series() models.UsageSeries
	Summary() models.SystemSummary
	Search(query string)
	NextPage()
	PrevPage()
	Select(pid int32) (models.ProcessRecord, error)
	Deselect()
	Selection() *models.ProcessRecord
	Terminate(ctx context.Context, pid int32) error
	Refresh(ctx context.Context) error
}

// PageSettings carries the startup-fixed values the dashboard template needs.
type PageSettings struct {
	Theme                  string
	RefreshIntervalSeconds float64
	PageSize               int
}

// MonitorHandlers serves the dashboard page and the monitoring API.
type MonitorHandlers struct {
	monitor  Monitor
	settings PageSettings
	log      *utils.Logger
}

// NewMonitorHandlers wires the handler set.
func NewMonitorHandlers(monitor Monitor, settings PageSettings, log *utils.Logger) *MonitorHandlers {
	return &MonitorHandlers{monitor: monitor, settings: settings, log: log}
}

// DashboardGET renders the dashboard shell; live data arrives over /ws.
func (h *MonitorHandlers) DashboardGET(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"title":           "procwatch",
		"theme":           h.settings.Theme,
		"refreshInterval": h.settings.RefreshIntervalSeconds,
		"pageSize":        h.settings.PageSize,
		"appVersion":      version.String(),
	})
}

// ProcessesGET returns the page computed by the most recent tick.
func (h *MonitorHandlers) ProcessesGET(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.CurrentPage())
}

type searchRequest struct {
	Query string `json:"query" binding:"max=256"`
}

// SearchPOST replaces the filter query and refreshes so the change is visible
// without waiting for the next scheduled tick.
func (h *MonitorHandlers) SearchPOST(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid search request"})
		return
	}
	h.monitor.Search(req.Query)
	h.refreshNow(c)
	c.JSON(http.StatusOK, h.monitor.CurrentPage())
}

// PageNextPOST advances pagination.
func (h *MonitorHandlers) PageNextPOST(c *gin.Context) {
	h.monitor.NextPage()
	h.refreshNow(c)
	c.JSON(http.StatusOK, h.monitor.CurrentPage())
}

// PagePrevPOST steps pagination back.
func (h *MonitorHandlers) PagePrevPOST(c *gin.Context) {
	h.monitor.PrevPage()
	h.refreshNow(c)
	c.JSON(http.StatusOK, h.monitor.CurrentPage())
}

type selectRequest struct {
	PID int32 `json:"pid" binding:"required,gt=0"`
}

// SelectPOST marks a row, which must be visible on the current page, as
// selected and returns its detail record.
func (h *MonitorHandlers) SelectPOST(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid select request"})
		return
	}
	rec, err := h.monitor.Select(req.PID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": true, "process": rec})
}

// DeselectPOST clears the selection.
func (h *MonitorHandlers) DeselectPOST(c *gin.Context) {
	h.monitor.Deselect()
	c.JSON(http.StatusOK, gin.H{"selected": false})
}

// SelectionGET returns the selected process detail, or a blank marker.
func (h *MonitorHandlers) SelectionGET(c *gin.Context) {
	if rec := h.monitor.Selection(); rec != nil {
		c.JSON(http.StatusOK, gin.H{"selected": true, "process": rec})
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": false})
}

// TerminatePOST sends a termination signal to the PID in the path. A target
// that already exited reports success; the row disappears on the next tick.
func (h *MonitorHandlers) TerminatePOST(c *gin.Context) {
	pid, err := strconv.ParseInt(c.Param("pid"), 10, 32)
	if err != nil || pid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pid"})
		return
	}
	err = h.monitor.Terminate(c.Request.Context(), int32(pid))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "ok", "pid": pid})
	case errors.Is(err, sampler.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied", "pid": pid})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "pid": pid})
	}
}

// SystemGET returns the host usage summary for the header cards.
func (h *MonitorHandlers) SystemGET(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.Summary())
}

// SeriesGET returns the rolling CPU/memory window for the charts.
func (h *MonitorHandlers) SeriesGET(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.Series())
}

// RefreshPOST forces an immediate tick.
func (h *MonitorHandlers) RefreshPOST(c *gin.Context) {
	h.refreshNow(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// refreshNow runs one tick so a user action is reflected promptly. A tick
// already in flight covers the change on its own; capture errors are surfaced
// through the notice sink, so they are only logged here.
func (h *MonitorHandlers) refreshNow(c *gin.Context) {
	if err := h.monitor.Refresh(c.Request.Context()); err != nil {
		h.log.Writef("manual refresh: %v", err)
	}
}

var _ Monitor = (*presenter.Presenter)(nil)
