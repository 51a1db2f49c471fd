package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shopzone/ecommerce-api/internal/respond"
	"github.com/shopzone/ecommerce-api/internal/token"
)

// Context keys set by RequireAuth for downstream handlers.
const (
	ContextUserID = "user_id"
	ContextToken  = "token"
)

// RequireAuth gates a route group behind a Bearer access token. Revoked
// tokens fail verification, so a signed-out token never reaches a handler.
func RequireAuth(tokens *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return respond.Error(c, http.StatusUnauthorized, "Authorization token required")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			identity, err := tokens.Verify(c.Request().Context(), raw)
			if err != nil {
				return respond.Error(c, http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(ContextUserID, identity.UserID)
			c.Set(ContextToken, raw)
			return next(c)
		}
	}
}
