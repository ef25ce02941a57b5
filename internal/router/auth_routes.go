package router

import (
	"github.com/labstack/echo/v4"

	"github.com/outy-app/outy/internal/handler"
	"github.com/outy-app/outy/internal/middleware"
)

// RegisterAuth registers registration, login and the identity echo.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	e.POST("/api/auth/register", a.Register)
	e.POST("/api/auth/login", a.Login)
	e.GET("/api/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterMember registers endpoints open to any signed-in account.
func RegisterMember(e *echo.Echo, h Handlers, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)

	e.POST("/api/reservations", h.Reservations.Create, auth)
	e.GET("/api/me/reservations", h.Reservations.Mine, auth)
	e.POST("/api/reviews", h.Reviews.Upsert, auth)
}
