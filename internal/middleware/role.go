package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/outy-app/outy/internal/authz"
)

// RequireRole rejects requests whose token role is not one of roles.  It
// must run after JWTAuth.  The decision is delegated to authz.Check so
// handlers applying ownership rules use the same predicate.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	req := authz.Role(roles...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := authz.Check(ClaimsFrom(c), req)
			switch {
			case errors.Is(err, authz.ErrUnauthenticated):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			case err != nil:
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
