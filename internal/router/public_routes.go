package router

import (
	"github.com/labstack/echo/v4"

	"github.com/outy-app/outy/internal/handler"
	"github.com/outy-app/outy/internal/middleware"
)

// RegisterPublic registers browse and verification endpoints that need no
// token.  List endpoints and /api/config go through the response cache;
// detail pages are always read fresh.
func RegisterPublic(e *echo.Echo, h Handlers, clientURL string, cache *middleware.ResponseCache) {
	cached := cache.Middleware()

	e.GET("/api/config", handler.ClientConfig(clientURL), cached)
	e.GET(handler.PlacesRoute, h.Catalog.ListPlaces, cached)
	e.GET(handler.PlacesRoute+"/:id", h.Catalog.GetPlace)
	e.GET(handler.EventsRoute, h.Catalog.ListEvents, cached)
	e.GET(handler.EventsRoute+"/:id", h.Catalog.GetEvent)

	// Door staff scan codes without an account.
	e.GET("/api/reservations/verify/:code", h.Reservations.Verify)
	e.GET("/api/media/:type/:id", h.Media.List)
}
