package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/outy-app/outy/internal/utils"
)

// ClaimsFrom returns the claims stored by JWTAuth, or nil on public routes.
func ClaimsFrom(c echo.Context) *utils.Claims {
	if cl, ok := c.Get(ClaimsKey).(*utils.Claims); ok {
		return cl
	}
	return nil
}

// currentUserID identifies the caller for rate limit keys; "anon" when the
// request carries no verified token.
func currentUserID(c echo.Context) string {
	if s, ok := c.Get(UserIDKey).(string); ok && s != "" {
		return s
	}
	return "anon"
}
