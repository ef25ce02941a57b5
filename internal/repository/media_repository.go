package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/outy-app/outy/internal/model"
)

// MediaRepo is the append-only media registry.
type MediaRepo struct {
	db *sql.DB
}

// NewMediaRepo returns a new MediaRepo bound to the given database.
func NewMediaRepo(db *sql.DB) *MediaRepo { return &MediaRepo{db: db} }

const mediaColumns = "id, COALESCE(owner_id::text, ''), related_type, related_id, COALESCE(type, ''), url, created_at"

func scanMedia(s rowScanner) (model.Media, error) {
	var (
		m       model.Media
		relType string
	)
	if err := s.Scan(&m.ID, &m.OwnerID, &relType, &m.RelatedID, &m.Type, &m.URL, &m.CreatedAt); err != nil {
		return model.Media{}, err
	}
	m.RelatedType = model.TargetType(relType)
	return m, nil
}

// Create appends a media item and returns the stored row.
func (r *MediaRepo) Create(ctx context.Context, ownerID string, ref model.ListingRef, kind, url string) (model.Media, error) {
	return scanMedia(r.db.QueryRowContext(ctx,
		"INSERT INTO media (id, owner_id, related_type, related_id, type, url) VALUES ($1, $2, $3, $4, $5, $6) RETURNING "+mediaColumns,
		uuid.NewString(), ownerID, string(ref.Type), ref.ID, nullString(kind), url))
}

// ListByTarget returns the media of a listing in upload order.  A malformed
// id yields an empty list.
func (r *MediaRepo) ListByTarget(ctx context.Context, ref model.ListingRef) ([]model.Media, error) {
	out := []model.Media{}
	if !validID(ref.ID) {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+mediaColumns+" FROM media WHERE related_type = $1 AND related_id = $2 ORDER BY created_at",
		string(ref.Type), ref.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
