package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness check used by load balancers and monitoring.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// Supported cities and vibes offered to clients as filter choices.
var (
	Cities = []string{"Casablanca", "Rabat", "Marrakech", "Tangier", "Agadir", "Fes", "Meknes", "Oujda", "Tetouan", "Nador"}
	Vibes  = []string{"Chill", "Luxury", "Party", "Live Music", "Rooftop", "Business", "Networking", "Conference"}
)

// ClientConfig serves the static filter choices and the front-end origin.
func ClientConfig(clientURL string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"cities":    Cities,
			"vibes":     Vibes,
			"clientUrl": clientURL,
		})
	}
}
