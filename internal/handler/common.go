package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/outy-app/outy/internal/authz"
	"github.com/outy-app/outy/internal/middleware"
	"github.com/outy-app/outy/internal/model"
	"github.com/outy-app/outy/internal/repository"
	"github.com/outy-app/outy/internal/utils"
)

// dbTimeout bounds the database work of one request.
const dbTimeout = 5 * time.Second

func dbContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// ListingCache drops cached list responses after a write.
type ListingCache interface {
	Invalidate(ctx context.Context, routes ...string)
}

type noCache struct{}

func (noCache) Invalidate(context.Context, ...string) {}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// respondError maps repository and authorization errors to HTTP responses.
// Unexpected errors are logged with the route and hidden behind a generic
// message.
func respondError(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, authz.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.Is(err, repository.ErrForbidden), errors.Is(err, authz.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already in use"})
	case errors.Is(err, repository.ErrReservationsDisabled):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservations disabled"})
	}
	log.Error().Err(err).
		Str("method", c.Request().Method).
		Str("route", c.Path()).
		Msg(msg)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}

// claims returns the verified identity or ErrUnauthenticated.
func claims(c echo.Context) (*utils.Claims, error) {
	cl := middleware.ClaimsFrom(c)
	if cl == nil {
		return nil, authz.ErrUnauthenticated
	}
	return cl, nil
}

// listingRef parses a (type, id) pair from request input.
func listingRef(kind, id string) (model.ListingRef, error) {
	t, err := model.ParseTargetType(kind)
	if err != nil {
		return model.ListingRef{}, err
	}
	return model.ListingRef{Type: t, ID: id}, nil
}
