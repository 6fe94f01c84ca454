package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abdusco/shortlink/internal/config"
	"github.com/abdusco/shortlink/internal/db/dbtest"
	"github.com/abdusco/shortlink/internal/handler"
	"github.com/abdusco/shortlink/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t *testing.T
	e *echo.Echo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg, err := config.LoadFrom(map[string]string{
		"JWT_SECRET":       "test-secret",
		"BCRYPT_COST":      "4",
		"DEFAULT_PROTOCOL": "https",
		"DEFAULT_DOMAIN":   "example.org",
	})
	require.NoError(t, err)

	return &testServer{t: t, e: server.New(cfg, dbtest.Open(t))}
}

func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its bearer token.
func (s *testServer) register(email string) string {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"password": "hunter22",
		"name":     "Test User",
	}, "")
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	res := decode[handler.AuthResponse](s.t, rec)
	require.NotEmpty(s.t, res.Token)
	return res.Token
}

func (s *testServer) createLink(token string, body map[string]string) handler.LinkResponse {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/api/links", body, token)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[handler.LinkResponse](s.t, rec)
}

func (s *testServer) getLink(token, id string) handler.LinkResponse {
	s.t.Helper()

	rec := s.do(http.MethodGet, "/api/links/"+id, nil, token)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[handler.LinkResponse](s.t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
