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

// PlaceRepo stores venue listings.  Filtered listings are built with goqu
// so that only the supplied filters appear in the predicate.
type PlaceRepo struct {
	db *sql.DB
}

// NewPlaceRepo returns a new PlaceRepo bound to the given database.
func NewPlaceRepo(db *sql.DB) *PlaceRepo { return &PlaceRepo{db: db} }

func (r *PlaceRepo) selectPlaces() *goqu.SelectDataset {
	return dialect.From(goqu.T("places").As("p")).Prepared(true).Select(
		goqu.I("p.id"),
		text("p.owner_id::text"),
		goqu.I("p.name"),
		goqu.I("p.category"),
		goqu.I("p.city"),
		goqu.I("p.vibe_tags"),
		text("p.description"),
		text("p.address"),
		goqu.I("p.latitude"),
		goqu.I("p.longitude"),
		text("p.phone"),
		text("p.whatsapp"),
		text("p.rules"),
		text("p.menu_pdf_url"),
		goqu.I("p.reservation_mode"),
		text("p.reservation_link"),
		goqu.I("p.created_at"),
		ratingExpr(string(model.TargetPlace), "p"),
	)
}

func scanPlace(s rowScanner) (model.Place, error) {
	var (
		p        model.Place
		lat, lng sql.NullFloat64
		mode     string
	)
	err := s.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Category, &p.City, pq.Array(&p.VibeTags),
		&p.Description, &p.Address, &lat, &lng, &p.Phone, &p.Whatsapp, &p.Rules, &p.MenuPDFURL,
		&mode, &p.ReservationLink, &p.CreatedAt, &p.Rating)
	if err != nil {
		return model.Place{}, err
	}
	if p.VibeTags == nil {
		p.VibeTags = []string{}
	}
	p.Latitude, p.Longitude = floatPtr(lat), floatPtr(lng)
	p.ReservationMode = model.ReservationMode(mode)
	return p, nil
}

// Create inserts p owned by p.OwnerID and fills in ID and CreatedAt.
func (r *PlaceRepo) Create(ctx context.Context, p *model.Place) error {
	p.ID = uuid.NewString()
	if p.VibeTags == nil {
		p.VibeTags = []string{}
	}
	if p.ReservationMode == "" {
		p.ReservationMode = model.ModeNone
	}
	q, args, err := dialect.Insert("places").Prepared(true).Rows(goqu.Record{
		"id":               p.ID,
		"owner_id":         p.OwnerID,
		"name":             p.Name,
		"category":         p.Category,
		"city":             p.City,
		"vibe_tags":        pq.Array(p.VibeTags),
		"description":      nullString(p.Description),
		"address":          nullString(p.Address),
		"latitude":         nullFloat(p.Latitude),
		"longitude":        nullFloat(p.Longitude),
		"phone":            nullString(p.Phone),
		"whatsapp":         nullString(p.Whatsapp),
		"rules":            nullString(p.Rules),
		"menu_pdf_url":     nullString(p.MenuPDFURL),
		"reservation_mode": string(p.ReservationMode),
		"reservation_link": nullString(p.ReservationLink),
	}).Returning("created_at").ToSQL()
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx, q, args...).Scan(&p.CreatedAt)
}

// List returns places matching every non-empty filter, newest first.
func (r *PlaceRepo) List(ctx context.Context, f model.ListingFilter) ([]model.Place, error) {
	ds := r.selectPlaces()
	if f.City != "" {
		ds = ds.Where(goqu.I("p.city").Eq(f.City))
	}
	if f.Category != "" {
		ds = ds.Where(goqu.I("p.category").Eq(f.Category))
	}
	if f.Vibe != "" {
		ds = ds.Where(goqu.L("? = ANY(p.vibe_tags)", f.Vibe))
	}
	q, args, err := ds.Order(goqu.I("p.created_at").Desc()).ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Place{}
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		if f.NearLat != nil && f.NearLng != nil {
			p.DistanceHint = p.DistanceFrom(*f.NearLat, *f.NearLng)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns one place or ErrNotFound.
func (r *PlaceRepo) Get(ctx context.Context, id string) (model.Place, error) {
	if !validID(id) {
		return model.Place{}, ErrNotFound
	}
	q, args, err := r.selectPlaces().Where(goqu.I("p.id").Eq(id)).ToSQL()
	if err != nil {
		return model.Place{}, err
	}
	p, err := scanPlace(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Place{}, ErrNotFound
	}
	return p, err
}
