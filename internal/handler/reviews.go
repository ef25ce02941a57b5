package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/outy-app/outy/internal/authz"
	"github.com/outy-app/outy/internal/model"
	"github.com/outy-app/outy/internal/repository"
)

// ReviewHandler serves the review ledger.
type ReviewHandler struct {
	Targets *repository.TargetRepo
	Reviews *repository.ReviewRepo
	Cache   ListingCache
}

// NewReviewHandler returns a ReviewHandler; cache is invalidated after
// every new review.
func NewReviewHandler(t *repository.TargetRepo, rv *repository.ReviewRepo, cache ListingCache) *ReviewHandler {
	if cache == nil {
		cache = noCache{}
	}
	return &ReviewHandler{Targets: t, Reviews: rv, Cache: cache}
}

type reviewReq struct {
	RelatedType string `json:"related_type"`
	RelatedID   string `json:"related_id"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
}

type replyReq struct {
	Reply string `json:"reply"`
}

// Upsert handles POST /api/reviews.  A second submission by the same user
// for the same listing replaces rating and comment.
func (h *ReviewHandler) Upsert(c echo.Context) error {
	cl, err := claims(c)
	if err != nil {
		return respondError(c, err, "unauthorized")
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ref, err := listingRef(req.RelatedType, strings.TrimSpace(req.RelatedID))
	if err != nil {
		return badRequest(c, "invalid related type")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return badRequest(c, "rating must be between 1 and 5")
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	if _, err := h.Targets.Lookup(ctx, ref); err != nil {
		return respondError(c, err, "failed to save review")
	}
	rv, err := h.Reviews.Upsert(ctx, cl.UserID, ref, req.Rating, strings.TrimSpace(req.Comment))
	if err != nil {
		return respondError(c, err, "failed to save review")
	}
	h.Cache.Invalidate(ctx, listRoute(ref.Type))
	return c.JSON(http.StatusOK, rv)
}

// Reply handles POST /api/reviews/:id/reply.  Only the business owning the
// reviewed listing may answer.
func (h *ReviewHandler) Reply(c echo.Context) error {
	cl, err := claims(c)
	if err != nil {
		return respondError(c, err, "unauthorized")
	}
	var req replyReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Reply = strings.TrimSpace(req.Reply)
	if req.Reply == "" {
		return badRequest(c, "reply required")
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	rv, err := h.Reviews.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err, "failed to reply")
	}
	target, err := h.Targets.Lookup(ctx, model.ListingRef{Type: rv.RelatedType, ID: rv.RelatedID})
	if err != nil {
		return respondError(c, err, "failed to reply")
	}
	if err := authz.Check(cl, authz.Role(model.RoleBusiness).Owner(target.OwnerID)); err != nil {
		return respondError(c, err, "failed to reply")
	}

	rv, err = h.Reviews.SetReply(ctx, rv.ID, req.Reply)
	if err != nil {
		return respondError(c, err, "failed to reply")
	}
	return c.JSON(http.StatusOK, rv)
}
