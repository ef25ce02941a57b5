package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/outy-app/outy/internal/model"
)

// EventRepo stores dated listings.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) selectEvents() *goqu.SelectDataset {
	return dialect.From(goqu.T("events").As("e")).Prepared(true).Select(
		goqu.I("e.id"),
		text("e.owner_id::text"),
		goqu.L("e.place_id::text"),
		goqu.I("e.name"),
		goqu.I("e.city"),
		goqu.I("e.vibe_tags"),
		text("to_char(e.date, 'YYYY-MM-DD')"),
		text("e.time"),
		text("e.description"),
		text("e.address"),
		goqu.I("e.latitude"),
		goqu.I("e.longitude"),
		text("e.rules"),
		text("e.ticket_link"),
		goqu.I("e.reservation_mode"),
		text("e.reservation_link"),
		goqu.I("e.created_at"),
		ratingExpr(string(model.TargetEvent), "e"),
	)
}

func scanEvent(s rowScanner) (model.Event, error) {
	var (
		e        model.Event
		placeID  sql.NullString
		lat, lng sql.NullFloat64
		mode     string
	)
	err := s.Scan(&e.ID, &e.OwnerID, &placeID, &e.Name, &e.City, pq.Array(&e.VibeTags),
		&e.Date, &e.Time, &e.Description, &e.Address, &lat, &lng, &e.Rules, &e.TicketLink,
		&mode, &e.ReservationLink, &e.CreatedAt, &e.Rating)
	if err != nil {
		return model.Event{}, err
	}
	if e.VibeTags == nil {
		e.VibeTags = []string{}
	}
	if placeID.Valid {
		e.PlaceID = &placeID.String
	}
	e.Latitude, e.Longitude = floatPtr(lat), floatPtr(lng)
	e.ReservationMode = model.ReservationMode(mode)
	return e, nil
}

// Create inserts e owned by e.OwnerID and fills in ID and CreatedAt.
// e.Date must be empty or YYYY-MM-DD.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	e.ID = uuid.NewString()
	if e.VibeTags == nil {
		e.VibeTags = []string{}
	}
	if e.ReservationMode == "" {
		e.ReservationMode = model.ModeNone
	}
	var placeID sql.NullString
	if e.PlaceID != nil {
		placeID = nullString(*e.PlaceID)
	}
	q, args, err := dialect.Insert("events").Prepared(true).Rows(goqu.Record{
		"id":               e.ID,
		"owner_id":         e.OwnerID,
		"place_id":         placeID,
		"name":             e.Name,
		"city":             e.City,
		"vibe_tags":        pq.Array(e.VibeTags),
		"date":             nullString(e.Date),
		"time":             nullString(e.Time),
		"description":      nullString(e.Description),
		"address":          nullString(e.Address),
		"latitude":         nullFloat(e.Latitude),
		"longitude":        nullFloat(e.Longitude),
		"rules":            nullString(e.Rules),
		"ticket_link":      nullString(e.TicketLink),
		"reservation_mode": string(e.ReservationMode),
		"reservation_link": nullString(e.ReservationLink),
	}).Returning("created_at").ToSQL()
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx, q, args...).Scan(&e.CreatedAt)
}

// List returns events matching every non-empty filter, soonest first.
// Category does not apply to events and is ignored.
func (r *EventRepo) List(ctx context.Context, f model.ListingFilter) ([]model.Event, error) {
	ds := r.selectEvents()
	if f.City != "" {
		ds = ds.Where(goqu.I("e.city").Eq(f.City))
	}
	if f.Vibe != "" {
		ds = ds.Where(goqu.L("? = ANY(e.vibe_tags)", f.Vibe))
	}
	q, args, err := ds.Order(goqu.I("e.date").Asc()).ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns one event or ErrNotFound.
func (r *EventRepo) Get(ctx context.Context, id string) (model.Event, error) {
	if !validID(id) {
		return model.Event{}, ErrNotFound
	}
	q, args, err := r.selectEvents().Where(goqu.I("e.id").Eq(id)).ToSQL()
	if err != nil {
		return model.Event{}, err
	}
	e, err := scanEvent(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	return e, err
}
