package auth

import (
	"net/http"
	"strings"

	"github.com/abdusco/shortlink/internal"
	"github.com/labstack/echo/v4"
)

const userIDKey = "auth.user_id"

// NewAuthMiddleware rejects requests without a valid "Authorization: Bearer" token
// and exposes the token's user id through UserID. A missing token yields
// internal.ErrUnauthorized.
func NewAuthMiddleware(tokens *Tokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request())
			if !ok {
				return internal.ErrUnauthorized
			}

			userID, ok := tokens.Verify(token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id set by the middleware.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
