package handler

import (
	"net/http"

	"github.com/abdusco/shortlink/internal"
	"github.com/abdusco/shortlink/internal/shortlink"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type RedirectHandler struct {
	resolver *shortlink.Resolver
}

func NewRedirectHandler(resolver *shortlink.Resolver) *RedirectHandler {
	return &RedirectHandler{resolver: resolver}
}

// Redirect handles GET /api/redirects/:code. Failures are reported as JSON.
func (h *RedirectHandler) Redirect(c echo.Context) error {
	return h.resolve(c, http.StatusMovedPermanently)
}

// Visit handles GET /:code for browsers. Failures render an HTML page.
func (h *RedirectHandler) Visit(c echo.Context) error {
	return h.resolve(c, http.StatusTemporaryRedirect)
}

func (h *RedirectHandler) resolve(c echo.Context, status int) error {
	code := c.Param("code")

	res, err := h.resolver.Resolve(c.Request().Context(), code)
	if err != nil {
		return toHTTPError(err)
	}

	if res.Outcome != shortlink.Redirect {
		log.Debug().Str("short_code", code).Stringer("outcome", res.Outcome).Msg("short code not followed")
	}

	switch res.Outcome {
	case shortlink.Redirect:
		log.Debug().Str("short_code", code).Str("link_id", res.Link.ID).Str("target", res.Target).Msg("redirecting")
		return c.Redirect(status, res.Target)
	case shortlink.Expired:
		return toHTTPError(internal.ErrLinkExpired)
	default:
		return toHTTPError(internal.ErrLinkNotFound)
	}
}
