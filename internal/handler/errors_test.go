package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abdusco/shortlink/internal"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", internal.NewValidationError("Valid URL is required"), http.StatusBadRequest, "Valid URL is required"},
		{"wrapped validation", fmt.Errorf("create: %w", internal.NewValidationError("bad")), http.StatusBadRequest, "bad"},
		{"unauthorized", internal.ErrUnauthorized, http.StatusUnauthorized, "Authentication required"},
		{"user exists", internal.ErrUserExists, http.StatusBadRequest, "User already exists"},
		{"invalid credentials", internal.ErrInvalidCredentials, http.StatusBadRequest, "Invalid credentials"},
		{"code taken", internal.ErrCodeTaken, http.StatusBadRequest, "Custom short code already exists"},
		{"link not found", internal.ErrLinkNotFound, http.StatusNotFound, "URL not found"},
		{"user not found", internal.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"expired", internal.ErrLinkExpired, http.StatusGone, "URL has expired"},
		{"exhausted", internal.ErrAllocationExhausted, http.StatusInternalServerError, internalErrorMessage},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, internalErrorMessage},
		{"http error passes through", echo.NewHTTPError(http.StatusTeapot, "short and stout"), http.StatusTeapot, "short and stout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := toHTTPError(tt.err)
			assert.Equal(t, tt.code, httpErr.Code)
			assert.Equal(t, tt.message, httpErr.Message)
		})
	}
}

func TestErrorHandler_API(t *testing.T) {
	e := echo.New()

	t.Run("client error keeps message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/links", nil), rec)

		ErrorHandler(internal.ErrCodeTaken, c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "Custom short code already exists", body.Message)
	})

	t.Run("internal error hides detail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/links", nil), rec)

		ErrorHandler(errors.New("connection refused by 10.0.0.7"), c)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "10.0.0.7")
		assert.Contains(t, rec.Body.String(), internalErrorMessage)
	})
}

func TestErrorHandler_Pages(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name  string
		err   error
		code  int
		title string
	}{
		{"not found", internal.ErrLinkNotFound, http.StatusNotFound, "URL Not Found"},
		{"expired", internal.ErrLinkExpired, http.StatusGone, "Link Expired"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/abc123", nil), rec)

			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, echo.MIMETextHTMLCharsetUTF8, rec.Header().Get(echo.HeaderContentType))
			assert.Contains(t, rec.Body.String(), tt.title)
		})
	}
}
