package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/outy-app/outy/internal/model"
	"github.com/outy-app/outy/internal/utils"
)

// UserRepo is the credential store.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = "id, email, password_hash, role, business_name, created_at"

// NormalizeEmail trims and lower-cases an address before storage or lookup.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create hashes password and inserts the user.  A taken email yields
// ErrEmailExists, both from the pre-check and from the unique constraint
// when two registrations race.
func (r *UserRepo) Create(ctx context.Context, email, password, role, businessName string) (model.User, error) {
	email = NormalizeEmail(email)
	role = model.NormalizeRole(role)

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists); err != nil {
		return model.User{}, err
	}
	if exists {
		return model.User{}, ErrEmailExists
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return model.User{}, err
	}

	u := model.User{ID: uuid.NewString(), Email: email, PasswordHash: hash, Role: role}
	if bn := strings.TrimSpace(businessName); bn != "" {
		u.BusinessName = &bn
	}
	err = r.db.QueryRowContext(ctx,
		"INSERT INTO users (id, email, password_hash, role, business_name) VALUES ($1, $2, $3, $4, $5) RETURNING created_at",
		u.ID, u.Email, u.PasswordHash, u.Role, u.BusinessName).Scan(&u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1 LIMIT 1", NormalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	if !validID(id) {
		return model.User{}, ErrNotFound
	}
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1 LIMIT 1", id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (model.User, error) {
	var (
		u  model.User
		bn sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &bn, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if bn.Valid {
		u.BusinessName = &bn.String
	}
	return u, nil
}
