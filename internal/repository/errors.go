// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.  For
// example, ErrForbidden indicates that the caller does not own the
// listing it is acting on, while ErrReservationsDisabled signals that a
// listing exists but does not take bookings.
package repository

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrNotFound is returned when the requested row does not exist, including
// when the id is not a well-formed UUID.  Handlers translate it into 404.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate it into 403.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned by UserRepo.Create for a taken email.
var ErrEmailExists = errors.New("email already registered")

// ErrReservationsDisabled is returned when the target listing has
// reservation mode NONE.
var ErrReservationsDisabled = errors.New("reservations disabled for this listing")

// ErrCodeExhausted is returned when every generated reservation code
// collided with an existing one.
var ErrCodeExhausted = errors.New("could not allocate a unique reservation code")

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique violation, optionally
// restricted to one constraint name.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// validID reports whether id parses as a UUID.  Lookups with malformed ids
// short-circuit to ErrNotFound instead of surfacing a driver error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// nullString stores empty strings as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
