package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/outy-app/outy/internal/model"
)

// ReviewRepo is the review ledger.  A user holds at most one review per
// listing; resubmitting overwrites rating and comment but keeps the reply.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo returns a new ReviewRepo bound to the given database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewColumns = "id, COALESCE(user_id::text, ''), related_type, related_id, rating, COALESCE(comment, ''), reply, created_at"

func scanReview(s rowScanner) (model.Review, error) {
	var (
		rv      model.Review
		relType string
		reply   sql.NullString
	)
	if err := s.Scan(&rv.ID, &rv.UserID, &relType, &rv.RelatedID, &rv.Rating, &rv.Comment, &reply, &rv.CreatedAt); err != nil {
		return model.Review{}, err
	}
	rv.RelatedType = model.TargetType(relType)
	if reply.Valid {
		rv.Reply = &reply.String
	}
	return rv, nil
}

// Upsert stores the review of (userID, ref) and returns the stored row.
func (r *ReviewRepo) Upsert(ctx context.Context, userID string, ref model.ListingRef, rating int, comment string) (model.Review, error) {
	return scanReview(r.db.QueryRowContext(ctx,
		`INSERT INTO reviews (id, user_id, related_type, related_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, related_type, related_id)
		DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment
		RETURNING `+reviewColumns,
		uuid.NewString(), userID, string(ref.Type), ref.ID, rating, nullString(comment)))
}

// GetByID returns one review or ErrNotFound.
func (r *ReviewRepo) GetByID(ctx context.Context, id string) (model.Review, error) {
	if !validID(id) {
		return model.Review{}, ErrNotFound
	}
	rv, err := scanReview(r.db.QueryRowContext(ctx, "SELECT "+reviewColumns+" FROM reviews WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Review{}, ErrNotFound
	}
	return rv, err
}

// SetReply sets the owner reply of a review, replacing any earlier one.
func (r *ReviewRepo) SetReply(ctx context.Context, id, reply string) (model.Review, error) {
	if !validID(id) {
		return model.Review{}, ErrNotFound
	}
	rv, err := scanReview(r.db.QueryRowContext(ctx,
		"UPDATE reviews SET reply = $1 WHERE id = $2 RETURNING "+reviewColumns, reply, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Review{}, ErrNotFound
	}
	return rv, err
}

// ListByTarget returns the reviews of a listing, newest first.
func (r *ReviewRepo) ListByTarget(ctx context.Context, ref model.ListingRef) ([]model.Review, error) {
	out := []model.Review{}
	if !validID(ref.ID) {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE related_type = $1 AND related_id = $2 ORDER BY created_at DESC",
		string(ref.Type), ref.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
