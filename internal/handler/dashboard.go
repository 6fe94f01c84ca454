package handler

import (
	"net/http"

	"github.com/abdusco/shortlink/internal"
	"github.com/abdusco/shortlink/internal/auth"
	"github.com/abdusco/shortlink/internal/shortlink"
	"github.com/labstack/echo/v4"
)

// DashboardHandler serves the aggregates shown on a user's dashboard.
type DashboardHandler struct {
	links *shortlink.Service
}

func NewDashboardHandler(links *shortlink.Service) *DashboardHandler {
	return &DashboardHandler{links: links}
}

type StatsResponse struct {
	Envelope
	Stats *internal.LinkStats `json:"stats"`
}

// Stats handles GET /api/links/stats
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.links.Stats(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	if stats.TopLinks == nil {
		stats.TopLinks = []internal.ShortLink{}
	}

	return c.JSON(http.StatusOK, StatsResponse{
		Envelope: Envelope{Success: true},
		Stats:    stats,
	})
}
