// Package router builds the echo server: global middleware, handler wiring
// and route registration.
package router

import (
	"database/sql"
	"strings"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/outy-app/outy/internal/config"
	"github.com/outy-app/outy/internal/handler"
	"github.com/outy-app/outy/internal/middleware"
	"github.com/outy-app/outy/internal/repository"
	"github.com/outy-app/outy/internal/service"
)

// Deps are the process-owned resources the HTTP layer is built from.  Redis
// and Publisher may be nil.
type Deps struct {
	Cfg       config.Config
	CacheCfg  config.CacheConfig
	RateCfg   config.RateLimitConfig
	DB        *sql.DB
	Redis     *redis.Client
	Publisher service.ReservationPublisher
}

// Handlers groups every HTTP handler.
type Handlers struct {
	Auth         *handler.AuthHandler
	Catalog      *handler.CatalogHandler
	Reservations *handler.ReservationHandler
	Reviews      *handler.ReviewHandler
	Media        *handler.MediaHandler
}

// New returns a configured echo instance with all routes registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler

	e.Use(echoMw.Recover())
	e.Use(echoMw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics())
	e.Use(echoMw.CORSWithConfig(echoMw.CORSConfig{
		AllowOrigins:     []string{d.Cfg.ClientURL},
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoMw.BodyLimit("2M"))
	e.Use(middleware.IdentifyCaller(d.Cfg.JWTSecret))
	e.Use(apiOnly(middleware.NewTokenBucket(d.RateCfg, d.Redis)))

	cache := middleware.NewResponseCache(d.CacheCfg, d.Redis)

	users := repository.NewUserRepo(d.DB)
	places := repository.NewPlaceRepo(d.DB)
	events := repository.NewEventRepo(d.DB)
	targets := repository.NewTargetRepo(d.DB)
	reservations := repository.NewReservationRepo(d.DB)
	reviews := repository.NewReviewRepo(d.DB)
	media := repository.NewMediaRepo(d.DB)

	h := Handlers{
		Auth:         handler.NewAuthHandler(d.Cfg, users),
		Catalog:      handler.NewCatalogHandler(places, events, targets, reviews, media, cache),
		Reservations: handler.NewReservationHandler(d.Cfg, targets, reservations, d.Publisher),
		Reviews:      handler.NewReviewHandler(targets, reviews, cache),
		Media:        handler.NewMediaHandler(targets, media),
	}

	RegisterRoutes(e)
	RegisterPublic(e, h, d.Cfg.ClientURL, cache)
	RegisterAuth(e, h.Auth, d.Cfg.JWTSecret)
	RegisterMember(e, h, d.Cfg.JWTSecret)
	RegisterBusiness(e, h, d.Cfg.JWTSecret)
	return e
}

// RegisterRoutes registers the operational endpoints.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// apiOnly applies mw to /api requests and skips it for /health and /metrics.
func apiOnly(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		limited := mw(next)
		return func(c echo.Context) error {
			if strings.HasPrefix(c.Request().URL.Path, "/api/") {
				return limited(c)
			}
			return next(c)
		}
	}
}
