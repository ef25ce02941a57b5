package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/outy-app/outy/internal/config"
	"github.com/outy-app/outy/internal/model"
	"github.com/outy-app/outy/internal/monitoring"
	"github.com/outy-app/outy/internal/queue"
	"github.com/outy-app/outy/internal/repository"
	"github.com/outy-app/outy/internal/service"
	"github.com/outy-app/outy/internal/utils"
)

// ReservationHandler serves the reservation ledger.
type ReservationHandler struct {
	Cfg          config.Config
	Targets      *repository.TargetRepo
	Reservations *repository.ReservationRepo
	Publisher    service.ReservationPublisher
	NewCode      repository.CodeGenerator
}

// NewReservationHandler wires reservation requests to storage and the
// event publisher. pub may be nil.
func NewReservationHandler(cfg config.Config, t *repository.TargetRepo, r *repository.ReservationRepo, pub service.ReservationPublisher) *ReservationHandler {
	if pub == nil {
		pub = service.NopPublisher{}
	}
	return &ReservationHandler{Cfg: cfg, Targets: t, Reservations: r, Publisher: pub, NewCode: utils.NewReservationCode}
}

type reservationReq struct {
	RelatedType string `json:"related_type"`
	RelatedID   string `json:"related_id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	PeopleCount int    `json:"people_count"`
	Note        string `json:"note"`
}

type reservationResp struct {
	Reservation model.Reservation `json:"reservation"`
	QR          string            `json:"qr"`
}

// publish sends ev without failing the request; the outcome is only logged.
func (h *ReservationHandler) publish(ctx context.Context, key string, res model.Reservation) {
	if err := h.Publisher.PublishReservation(ctx, key, queue.NewReservationEvent(res, time.Now())); err != nil {
		log.Warn().Err(err).Str("routing_key", key).Str("reservation_id", res.ID).Msg("event not published")
	}
}

// Create handles POST /api/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	cl, err := claims(c)
	if err != nil {
		return respondError(c, err, "unauthorized")
	}
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ref, err := listingRef(req.RelatedType, strings.TrimSpace(req.RelatedID))
	if err != nil {
		return badRequest(c, "invalid related type")
	}
	req.Date = strings.TrimSpace(req.Date)
	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			return badRequest(c, "date must be YYYY-MM-DD")
		}
	}
	if req.PeopleCount < 0 {
		return badRequest(c, "people_count must not be negative")
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	target, err := h.Targets.Lookup(ctx, ref)
	if err != nil {
		return respondError(c, err, "failed to create reservation")
	}
	if !target.ReservationMode.AcceptsReservations() {
		return respondError(c, repository.ErrReservationsDisabled, "failed to create reservation")
	}

	res := model.Reservation{
		RelatedType: ref.Type,
		RelatedID:   ref.ID,
		UserID:      cl.UserID,
		HostOwnerID: target.OwnerID,
		FullName:    strings.TrimSpace(req.FullName),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Date:        req.Date,
		Time:        strings.TrimSpace(req.Time),
		PeopleCount: req.PeopleCount,
		Note:        req.Note,
	}
	if err := h.Reservations.Create(ctx, &res, h.NewCode); err != nil {
		return respondError(c, err, "failed to create reservation")
	}
	monitoring.TrackReservationCreated(string(res.RelatedType))

	qr, err := utils.QRDataURL(utils.VerificationURL(h.Cfg.ClientURL, res.ReservationCode))
	if err != nil {
		return respondError(c, err, "failed to render qr code")
	}
	h.publish(ctx, queue.KeyReservationCreated, res)
	return c.JSON(http.StatusCreated, reservationResp{Reservation: res, QR: qr})
}

// Verify handles GET /api/reservations/verify/:code.  It is public so that
// door staff can scan codes without an account.
func (h *ReservationHandler) Verify(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	res, err := h.Reservations.GetByCode(ctx, utils.NormalizeReservationCode(c.Param("code")))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"status": "NOT_FOUND"})
	}
	if err != nil {
		return respondError(c, err, "verification failed")
	}
	return c.JSON(http.StatusOK, res)
}

// Mine handles GET /api/me/reservations.
func (h *ReservationHandler) Mine(c echo.Context) error {
	cl, err := claims(c)
	if err != nil {
		return respondError(c, err, "unauthorized")
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	list, err := h.Reservations.ListByUser(ctx, cl.UserID)
	if err != nil {
		return respondError(c, err, "failed to load reservations")
	}
	return c.JSON(http.StatusOK, list)
}

// Hosted handles GET /api/host/reservations for business accounts.
func (h *ReservationHandler) Hosted(c echo.Context) error {
	cl, err := claims(c)
	if err != nil {
		return respondError(c, err, "unauthorized")
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	list, err := h.Reservations.ListByHost(ctx, cl.UserID)
	if err != nil {
		return respondError(c, err, "failed to load host reservations")
	}
	return c.JSON(http.StatusOK, list)
}

// CheckIn handles POST /api/reservations/:id/checkin.  Reservations of
// other hosts are reported as not found.
func (h *ReservationHandler) CheckIn(c echo.Context) error {
	cl, err := claims(c)
	if err != nil {
		return respondError(c, err, "unauthorized")
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	res, err := h.Reservations.CheckIn(ctx, c.Param("id"), cl.UserID)
	if err != nil {
		return respondError(c, err, "failed to check in")
	}
	monitoring.TrackCheckIn()
	h.publish(ctx, queue.KeyReservationCheckedIn, res)
	return c.JSON(http.StatusOK, res)
}
