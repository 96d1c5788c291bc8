package handlers

import (
	"procwatch/internal/middleware"
	"procwatch/internal/models"
)

// FrameSink adapts the websocket hub to the presenter's display sinks. Each
// push becomes one small typed frame; the browser dispatches on "kind" and
// redraws the matching widget.
type FrameSink struct {
	hub *middleware.Hub
}

// NewFrameSink wires a sink onto the hub.
func NewFrameSink(hub *middleware.Hub) *FrameSink {
	return &FrameSink{hub: hub}
}

type frame struct {
	Kind    string                `json:"kind"`
	Page    *models.Page          `json:"page,omitempty"`
	Series  *models.UsageSeries   `json:"series,omitempty"`
	Summary *models.SystemSummary `json:"summary,omitempty"`
	Detail  *models.ProcessRecord `json:"detail,omitempty"`
	Blank   bool                  `json:"blank,omitempty"`
	Notice  *models.Notice        `json:"notice,omitempty"`
}

func (s *FrameSink) PushPage(page models.Page) {
	s.hub.BroadcastJSON(frame{Kind: "page", Page: &page})
}

func (s *FrameSink) PushSeries(series models.UsageSeries) {
	s.hub.BroadcastJSON(frame{Kind: "series", Series: &series})
}

func (s *FrameSink) PushSummary(summary models.SystemSummary) {
	s.hub.BroadcastJSON(frame{Kind: "summary", Summary: &summary})
}

func (s *FrameSink) PushDetail(detail *models.ProcessRecord) {
	s.hub.BroadcastJSON(frame{Kind: "detail", Detail: detail, Blank: detail == nil})
}

func (s *FrameSink) PushNotice(notice models.Notice) {
	s.hub.BroadcastJSON(frame{Kind: "notice", Notice: &notice})
}
