package middleware // package middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/outy-app/outy/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ClaimsKey = "claims"
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores its claims in the request context.  Handlers read them back
// with ClaimsFrom, or c.Get("user_id") and c.Get("role") for the common
// fields.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(ClaimsKey, claims)
			c.Set(UserIDKey, claims.UserID)
			c.Set(RoleKey, claims.Role)
			return next(c)
		}
	}
}

// IdentifyCaller records the user id of a valid bearer token without
// enforcing one, so middleware that runs before the per-route JWTAuth (the
// rate limiter) can key on the caller.  Claims are not stored; routes that
// need them still go through JWTAuth.
func IdentifyCaller(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if raw, ok := strings.CutPrefix(auth, "Bearer "); ok {
				if claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(raw)); err == nil {
					c.Set(UserIDKey, claims.UserID)
				}
			}
			return next(c)
		}
	}
}
