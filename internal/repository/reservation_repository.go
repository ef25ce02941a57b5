package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/outy-app/outy/internal/model"
)

// ReservationRepo is the reservation ledger.  Codes are unique by
// constraint and never updated; the only mutation after insert is the
// PENDING to CHECKED_IN transition.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// MaxCodeAttempts bounds how many codes Create tries before giving up.
const MaxCodeAttempts = 5

const reservationCodeConstraint = "reservations_reservation_code_key"

const reservationColumns = `id, related_type, related_id, COALESCE(user_id::text, ''), COALESCE(host_owner_id::text, ''),
	COALESCE(full_name, ''), COALESCE(email, ''), COALESCE(phone, ''), COALESCE(to_char(date, 'YYYY-MM-DD'), ''),
	COALESCE(time, ''), COALESCE(people_count, 0), COALESCE(note, ''), reservation_code, status, created_at`

func scanReservation(s rowScanner) (model.Reservation, error) {
	var (
		res     model.Reservation
		relType string
	)
	err := s.Scan(&res.ID, &relType, &res.RelatedID, &res.UserID, &res.HostOwnerID,
		&res.FullName, &res.Email, &res.Phone, &res.Date,
		&res.Time, &res.PeopleCount, &res.Note, &res.ReservationCode, &res.Status, &res.CreatedAt)
	if err != nil {
		return model.Reservation{}, err
	}
	res.RelatedType = model.TargetType(relType)
	return res, nil
}

// CodeGenerator produces candidate reservation codes.
type CodeGenerator func() (string, error)

// Create inserts res as PENDING with a code from gen.  When a code collides
// with an existing one a new code is drawn, up to MaxCodeAttempts times,
// after which ErrCodeExhausted is returned.  ID, ReservationCode, Status and
// CreatedAt are filled in on success.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation, gen CodeGenerator) error {
	const q = `INSERT INTO reservations
		(id, related_type, related_id, user_id, host_owner_id, full_name, email, phone, date, time, people_count, note, reservation_code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at`

	for attempt := 0; attempt < MaxCodeAttempts; attempt++ {
		code, err := gen()
		if err != nil {
			return err
		}
		id := uuid.NewString()
		var createdAt sql.NullTime
		err = r.db.QueryRowContext(ctx, q,
			id, string(res.RelatedType), res.RelatedID, res.UserID, nullString(res.HostOwnerID),
			nullString(res.FullName), nullString(res.Email), nullString(res.Phone), nullString(res.Date),
			nullString(res.Time), res.PeopleCount, nullString(res.Note), code, model.StatusPending,
		).Scan(&createdAt)
		if isUniqueViolation(err, reservationCodeConstraint) {
			continue
		}
		if err != nil {
			return err
		}
		res.ID = id
		res.ReservationCode = code
		res.Status = model.StatusPending
		res.CreatedAt = createdAt.Time
		return nil
	}
	return ErrCodeExhausted
}

// GetByCode returns the reservation holding code or ErrNotFound.
func (r *ReservationRepo) GetByCode(ctx context.Context, code string) (model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE reservation_code = $1", code))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrNotFound
	}
	return res, err
}

// CheckIn marks the reservation CHECKED_IN when it belongs to hostID.  A
// reservation of another host is reported as ErrNotFound, indistinguishable
// from a missing one.  Repeating the call is allowed.
func (r *ReservationRepo) CheckIn(ctx context.Context, id, hostID string) (model.Reservation, error) {
	if !validID(id) {
		return model.Reservation{}, ErrNotFound
	}
	res, err := scanReservation(r.db.QueryRowContext(ctx,
		"UPDATE reservations SET status = $1 WHERE id = $2 AND host_owner_id = $3 RETURNING "+reservationColumns,
		model.StatusCheckedIn, id, hostID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrNotFound
	}
	return res, err
}

// ListByUser returns reservations made by userID, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	return r.list(ctx, "SELECT "+reservationColumns+" FROM reservations WHERE user_id = $1 ORDER BY created_at DESC", userID)
}

// ListByHost returns reservations against listings owned by hostID, newest first.
func (r *ReservationRepo) ListByHost(ctx context.Context, hostID string) ([]model.Reservation, error) {
	return r.list(ctx, "SELECT "+reservationColumns+" FROM reservations WHERE host_owner_id = $1 ORDER BY created_at DESC", hostID)
}

func (r *ReservationRepo) list(ctx context.Context, q, arg string) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
