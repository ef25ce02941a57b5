package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/outy-app/outy/internal/authz"
	"github.com/outy-app/outy/internal/model"
	"github.com/outy-app/outy/internal/repository"
)

// MediaHandler serves the media registry.
type MediaHandler struct {
	Targets *repository.TargetRepo
	Media   *repository.MediaRepo
}

// NewMediaHandler returns a MediaHandler backed by t and m.
func NewMediaHandler(t *repository.TargetRepo, m *repository.MediaRepo) *MediaHandler {
	return &MediaHandler{Targets: t, Media: m}
}

type mediaReq struct {
	RelatedType string `json:"related_type"`
	RelatedID   string `json:"related_id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
}

// List handles GET /api/media/:type/:id.
func (h *MediaHandler) List(c echo.Context) error {
	ref, err := listingRef(c.Param("type"), c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid related type")
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	items, err := h.Media.ListByTarget(ctx, ref)
	if err != nil {
		return respondError(c, err, "failed to load media")
	}
	return c.JSON(http.StatusOK, items)
}

// Attach handles POST /api/media.  The caller must own the listing.
func (h *MediaHandler) Attach(c echo.Context) error {
	cl, err := claims(c)
	if err != nil {
		return respondError(c, err, "unauthorized")
	}
	var req mediaReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ref, err := listingRef(req.RelatedType, strings.TrimSpace(req.RelatedID))
	if err != nil {
		return badRequest(c, "invalid related type")
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return badRequest(c, "url required")
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	target, err := h.Targets.Lookup(ctx, ref)
	if err != nil {
		return respondError(c, err, "failed to save media")
	}
	if err := authz.Check(cl, authz.Role(model.RoleBusiness).Owner(target.OwnerID)); err != nil {
		return respondError(c, err, "failed to save media")
	}

	m, err := h.Media.Create(ctx, cl.UserID, ref, strings.TrimSpace(req.Type), req.URL)
	if err != nil {
		return respondError(c, err, "failed to save media")
	}
	return c.JSON(http.StatusCreated, m)
}
