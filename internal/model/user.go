package model

import "time"

// Roles carried in the users.role column and in token claims.
const (
	RoleUser     = "user"
	RoleBusiness = "business"
)

// User mirrors a row of the users table.  PasswordHash never leaves the
// repository/handler boundary; responses use PublicUser.
type User struct {
	ID           string    // users.id
	Email        string    // users.email (lower-cased)
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	BusinessName *string   // users.business_name (nullable)
	CreatedAt    time.Time // users.created_at
}

// PublicUser is the part of a user that is safe to return to clients.
type PublicUser struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	BusinessName *string `json:"business_name"`
}

// Public strips the credential.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Role: u.Role, BusinessName: u.BusinessName}
}

// NormalizeRole maps anything other than "business" to the plain user role.
func NormalizeRole(role string) string {
	if role == RoleBusiness {
		return RoleBusiness
	}
	return RoleUser
}
