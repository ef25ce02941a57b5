package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/outy-app/outy/internal/model"
	"github.com/outy-app/outy/internal/repository"
)

// Cached list routes, invalidated when a listing or its rating changes.
const (
	PlacesRoute = "/api/places"
	EventsRoute = "/api/events"
)

func listRoute(t model.TargetType) string {
	if t == model.TargetEvent {
		return EventsRoute
	}
	return PlacesRoute
}

// CatalogHandler serves places and events.
type CatalogHandler struct {
	Places  *repository.PlaceRepo
	Events  *repository.EventRepo
	Targets *repository.TargetRepo
	Reviews *repository.ReviewRepo
	Media   *repository.MediaRepo
	Cache   ListingCache
}

// NewCatalogHandler returns the handler for place and event listings.
func NewCatalogHandler(p *repository.PlaceRepo, e *repository.EventRepo, t *repository.TargetRepo,
	rv *repository.ReviewRepo, m *repository.MediaRepo, cache ListingCache) *CatalogHandler {
	if cache == nil {
		cache = noCache{}
	}
	return &CatalogHandler{Places: p, Events: e, Targets: t, Reviews: rv, Media: m, Cache: cache}
}

type placeReq struct {
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	City            string   `json:"city"`
	VibeTags        []string `json:"vibe_tags"`
	Description     string   `json:"description"`
	Address         string   `json:"address"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Phone           string   `json:"phone"`
	Whatsapp        string   `json:"whatsapp"`
	Rules           string   `json:"rules"`
	MenuPDFURL      string   `json:"menu_pdf_url"`
	ReservationMode string   `json:"reservation_mode"`
	ReservationLink string   `json:"reservation_link"`
}

type eventReq struct {
	PlaceID         string   `json:"place_id"`
	Name            string   `json:"name"`
	City            string   `json:"city"`
	VibeTags        []string `json:"vibe_tags"`
	Date            string   `json:"date"`
	Time            string   `json:"time"`
	Description     string   `json:"description"`
	Address         string   `json:"address"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Rules           string   `json:"rules"`
	TicketLink      string   `json:"ticket_link"`
	ReservationMode string   `json:"reservation_mode"`
	ReservationLink string   `json:"reservation_link"`
}

// cleanTags trims tags and drops empty ones.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func listingFilter(c echo.Context) model.ListingFilter {
	f := model.ListingFilter{
		City:     strings.TrimSpace(c.QueryParam("city")),
		Category: strings.TrimSpace(c.QueryParam("category")),
		Vibe:     strings.TrimSpace(c.QueryParam("vibe")),
	}
	lat, errLat := strconv.ParseFloat(c.QueryParam("nearLat"), 64)
	lng, errLng := strconv.ParseFloat(c.QueryParam("nearLng"), 64)
	if errLat == nil && errLng == nil {
		f.NearLat, f.NearLng = &lat, &lng
	}
	return f
}

// ListPlaces handles GET /api/places.
func (h *CatalogHandler) ListPlaces(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	places, err := h.Places.List(ctx, listingFilter(c))
	if err != nil {
		return respondError(c, err, "failed to load places")
	}
	return c.JSON(http.StatusOK, places)
}

// GetPlace handles GET /api/places/:id.
func (h *CatalogHandler) GetPlace(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	p, err := h.Places.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err, "failed to load place")
	}
	ref := model.ListingRef{Type: model.TargetPlace, ID: p.ID}
	media, err := h.Media.ListByTarget(ctx, ref)
	if err != nil {
		return respondError(c, err, "failed to load place")
	}
	reviews, err := h.Reviews.ListByTarget(ctx, ref)
	if err != nil {
		return respondError(c, err, "failed to load place")
	}
	return c.JSON(http.StatusOK, model.PlaceDetail{Place: p, Media: media, Reviews: reviews})
}

// CreatePlace handles POST /api/places for business accounts.
func (h *CatalogHandler) CreatePlace(c echo.Context) error {
	cl, err := claims(c)
	if err != nil {
		return respondError(c, err, "unauthorized")
	}
	var req placeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Name, req.Category, req.City = strings.TrimSpace(req.Name), strings.TrimSpace(req.Category), strings.TrimSpace(req.City)
	if req.Name == "" || req.Category == "" || req.City == "" {
		return badRequest(c, "name, category and city required")
	}
	mode, err := model.ParseReservationMode(req.ReservationMode)
	if err != nil {
		return badRequest(c, err.Error())
	}

	p := &model.Place{
		OwnerID:         cl.UserID,
		Name:            req.Name,
		Category:        req.Category,
		City:            req.City,
		VibeTags:        cleanTags(req.VibeTags),
		Description:     req.Description,
		Address:         req.Address,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Phone:           req.Phone,
		Whatsapp:        req.Whatsapp,
		Rules:           req.Rules,
		MenuPDFURL:      req.MenuPDFURL,
		ReservationMode: mode,
		ReservationLink: req.ReservationLink,
	}

	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Places.Create(ctx, p); err != nil {
		return respondError(c, err, "failed to create place")
	}
	h.Cache.Invalidate(ctx, PlacesRoute)
	return c.JSON(http.StatusCreated, p)
}

// ListEvents handles GET /api/events.
func (h *CatalogHandler) ListEvents(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	events, err := h.Events.List(ctx, listingFilter(c))
	if err != nil {
		return respondError(c, err, "failed to load events")
	}
	return c.JSON(http.StatusOK, events)
}

// GetEvent handles GET /api/events/:id.
func (h *CatalogHandler) GetEvent(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	e, err := h.Events.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err, "failed to load event")
	}
	ref := model.ListingRef{Type: model.TargetEvent, ID: e.ID}
	media, err := h.Media.ListByTarget(ctx, ref)
	if err != nil {
		return respondError(c, err, "failed to load event")
	}
	reviews, err := h.Reviews.ListByTarget(ctx, ref)
	if err != nil {
		return respondError(c, err, "failed to load event")
	}
	return c.JSON(http.StatusOK, model.EventDetail{Event: e, Media: media, Reviews: reviews})
}

// CreateEvent handles POST /api/events for business accounts.  A place_id,
// when given, must name an existing place.
func (h *CatalogHandler) CreateEvent(c echo.Context) error {
	cl, err := claims(c)
	if err != nil {
		return respondError(c, err, "unauthorized")
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Name, req.City = strings.TrimSpace(req.Name), strings.TrimSpace(req.City)
	if req.Name == "" || req.City == "" {
		return badRequest(c, "name and city required")
	}
	mode, err := model.ParseReservationMode(req.ReservationMode)
	if err != nil {
		return badRequest(c, err.Error())
	}
	req.Date = strings.TrimSpace(req.Date)
	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			return badRequest(c, "date must be YYYY-MM-DD")
		}
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	e := &model.Event{
		OwnerID:         cl.UserID,
		Name:            req.Name,
		City:            req.City,
		VibeTags:        cleanTags(req.VibeTags),
		Date:            req.Date,
		Time:            strings.TrimSpace(req.Time),
		Description:     req.Description,
		Address:         req.Address,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Rules:           req.Rules,
		TicketLink:      req.TicketLink,
		ReservationMode: mode,
		ReservationLink: req.ReservationLink,
	}
	if id := strings.TrimSpace(req.PlaceID); id != "" {
		if _, err := h.Targets.Lookup(ctx, model.ListingRef{Type: model.TargetPlace, ID: id}); err != nil {
			return respondError(c, err, "failed to create event")
		}
		e.PlaceID = &id
	}

	if err := h.Events.Create(ctx, e); err != nil {
		return respondError(c, err, "failed to create event")
	}
	h.Cache.Invalidate(ctx, EventsRoute)
	return c.JSON(http.StatusCreated, e)
}
