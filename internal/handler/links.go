package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/abdusco/shortlink/internal"
	"github.com/abdusco/shortlink/internal/auth"
	"github.com/abdusco/shortlink/internal/shortlink"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// expiryLayouts are tried in order. Layouts without a zone are read as UTC.
var expiryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

type LinkHandler struct {
	links *shortlink.Service
}

func NewLinkHandler(links *shortlink.Service) *LinkHandler {
	return &LinkHandler{links: links}
}

type CreateLinkRequest struct {
	OriginalURL     string `json:"originalUrl"`
	CustomShortCode string `json:"customShortCode"`
	ExpiresAt       string `json:"expiresAt"`
}

type UpdateLinkRequest struct {
	OriginalURL *string `json:"originalUrl"`
	ShortCode   *string `json:"shortCode"`
}

type LinkResponse struct {
	Envelope
	URL *internal.ShortLink `json:"url"`
}

type ListLinksResponse struct {
	Envelope
	URLs []internal.ShortLink `json:"urls"`
}

// CreateLink handles POST /api/links
func (h *LinkHandler) CreateLink(c echo.Context) error {
	var req CreateLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	expiresAt, err := parseExpiry(req.ExpiresAt)
	if err != nil {
		return toHTTPError(err)
	}

	link, err := h.links.Create(c.Request().Context(), auth.UserID(c), shortlink.CreateParams{
		OriginalURL: req.OriginalURL,
		ShortCode:   req.CustomShortCode,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		return toHTTPError(err)
	}

	log.Info().Str("short_code", link.ShortCode).Str("user_id", link.UserID).Msg("link created")
	return c.JSON(http.StatusCreated, LinkResponse{
		Envelope: Envelope{Success: true, Message: "URL shortened successfully"},
		URL:      link,
	})
}

// ListLinks handles GET /api/links
func (h *LinkHandler) ListLinks(c echo.Context) error {
	links, err := h.links.List(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}
	if links == nil {
		links = []internal.ShortLink{}
	}

	return c.JSON(http.StatusOK, ListLinksResponse{
		Envelope: Envelope{Success: true},
		URLs:     links,
	})
}

// GetLink handles GET /api/links/:id
func (h *LinkHandler) GetLink(c echo.Context) error {
	link, err := h.links.Get(c.Request().Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, LinkResponse{
		Envelope: Envelope{Success: true},
		URL:      link,
	})
}

// UpdateLink handles PUT /api/links/:id
func (h *LinkHandler) UpdateLink(c echo.Context) error {
	var req UpdateLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	link, err := h.links.Update(c.Request().Context(), auth.UserID(c), c.Param("id"), shortlink.UpdateParams{
		OriginalURL: req.OriginalURL,
		ShortCode:   req.ShortCode,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, LinkResponse{
		Envelope: Envelope{Success: true, Message: "URL updated successfully"},
		URL:      link,
	})
}

// DeleteLink handles DELETE /api/links/:id
func (h *LinkHandler) DeleteLink(c echo.Context) error {
	userID := auth.UserID(c)
	id := c.Param("id")
	if err := h.links.Delete(c.Request().Context(), userID, id); err != nil {
		return toHTTPError(err)
	}

	log.Info().Str("link_id", id).Str("user_id", userID).Msg("link deleted")
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: "URL deleted successfully"})
}

func parseExpiry(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, internal.NewValidationError("Invalid expiration date")
}
