package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/outy-app/outy/internal/model"
)

// TargetRepo resolves a ListingRef to the owner and reservation settings
// of the place or event it names.
type TargetRepo struct {
	db *sql.DB
}

// NewTargetRepo returns a new TargetRepo bound to the given database.
func NewTargetRepo(db *sql.DB) *TargetRepo { return &TargetRepo{db: db} }

// Lookup returns ErrNotFound when the listing does not exist.  The table is
// chosen by a closed switch on the parsed type, never from request text.
func (r *TargetRepo) Lookup(ctx context.Context, ref model.ListingRef) (model.Target, error) {
	var q string
	switch ref.Type {
	case model.TargetPlace:
		q = "SELECT COALESCE(owner_id::text, ''), reservation_mode, COALESCE(reservation_link, '') FROM places WHERE id = $1"
	case model.TargetEvent:
		q = "SELECT COALESCE(owner_id::text, ''), reservation_mode, COALESCE(reservation_link, '') FROM events WHERE id = $1"
	default:
		return model.Target{}, fmt.Errorf("unknown listing type %q", ref.Type)
	}
	if !validID(ref.ID) {
		return model.Target{}, ErrNotFound
	}

	t := model.Target{Ref: ref}
	var mode string
	err := r.db.QueryRowContext(ctx, q, ref.ID).Scan(&t.OwnerID, &mode, &t.ReservationLink)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Target{}, ErrNotFound
	}
	if err != nil {
		return model.Target{}, err
	}
	t.ReservationMode = model.ReservationMode(mode)
	return t, nil
}
