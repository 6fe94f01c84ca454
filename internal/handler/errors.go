package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/abdusco/shortlink/internal"
	"github.com/abdusco/shortlink/web"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const internalErrorMessage = "Internal server error"

// Envelope is the common shape of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// toHTTPError maps domain errors to status codes. Unknown errors become a 500
// that keeps the cause as internal detail for logging.
func toHTTPError(err error) *echo.HTTPError {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var validation *internal.ValidationError
	switch {
	case errors.As(err, &validation):
		return echo.NewHTTPError(http.StatusBadRequest, validation.Message)
	case errors.Is(err, internal.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	case errors.Is(err, internal.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, internal.ErrUserExists):
		return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
	case errors.Is(err, internal.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, internal.ErrCodeTaken):
		return echo.NewHTTPError(http.StatusBadRequest, "Custom short code already exists")
	case errors.Is(err, internal.ErrLinkNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "URL not found")
	case errors.Is(err, internal.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	case errors.Is(err, internal.ErrLinkExpired):
		return echo.NewHTTPError(http.StatusGone, "URL has expired")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, internalErrorMessage).SetInternal(err)
	}
}

// ErrorHandler renders errors as the JSON envelope under /api and as an HTML
// page everywhere else. Messages of 5xx errors never reach the client.
func ErrorHandler(err error, c echo.Context) {
	httpErr := toHTTPError(err)
	code := httpErr.Code
	message := internalErrorMessage
	if msg, ok := httpErr.Message.(string); ok && code < http.StatusInternalServerError {
		message = msg
	}

	// the request logger already handled this error
	if c.Response().Committed {
		return
	}

	event := log.Debug()
	if code >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.
		Int("code", code).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Err(err).
		Msg("http error")

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else if isAPICall(c) {
		err = c.JSON(code, Envelope{Success: false, Message: message})
	} else {
		err = renderPage(c, code)
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to write error response")
	}
}

func isAPICall(c echo.Context) bool {
	path := c.Request().URL.Path
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

func renderPage(c echo.Context, code int) error {
	page := "error.html"
	switch code {
	case http.StatusNotFound:
		page = "notfound.html"
	case http.StatusGone:
		page = "expired.html"
	}

	data, err := web.FS.ReadFile(page)
	if err != nil {
		return c.String(code, http.StatusText(code))
	}
	return c.Blob(code, echo.MIMETextHTMLCharsetUTF8, data)
}
