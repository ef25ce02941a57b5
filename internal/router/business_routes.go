package router

import (
	"github.com/labstack/echo/v4"

	"github.com/outy-app/outy/internal/handler"
	"github.com/outy-app/outy/internal/middleware"
	"github.com/outy-app/outy/internal/model"
)

// RegisterBusiness registers endpoints that require the business role.
// Ownership of the individual listing or reservation is checked by the
// handlers.
func RegisterBusiness(e *echo.Echo, h Handlers, jwtSecret string) {
	mw := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleBusiness),
	}

	e.POST(handler.PlacesRoute, h.Catalog.CreatePlace, mw...)
	e.POST(handler.EventsRoute, h.Catalog.CreateEvent, mw...)
	e.GET("/api/host/reservations", h.Reservations.Hosted, mw...)
	e.POST("/api/reservations/:id/checkin", h.Reservations.CheckIn, mw...)
	e.POST("/api/reviews/:id/reply", h.Reviews.Reply, mw...)
	e.POST("/api/media", h.Media.Attach, mw...)
}
