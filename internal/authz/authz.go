// Package authz is the single place where role and ownership decisions are
// made.  Middleware and handlers call Check instead of comparing roles or
// owner ids themselves.
package authz

import (
	"errors"

	"github.com/outy-app/outy/internal/utils"
)

var (
	// ErrUnauthenticated means no verified identity is attached to the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the identity lacks the role or does not own the resource.
	ErrForbidden = errors.New("forbidden")
)

// Requirement describes what an operation needs.  An empty Roles list
// admits any authenticated caller.  When RequireOwner is set the caller must
// be OwnerID; an empty OwnerID (an ownerless listing) matches nobody.
type Requirement struct {
	Roles        []string
	RequireOwner bool
	OwnerID      string
}

// Role requires one of the given roles.
func Role(roles ...string) Requirement { return Requirement{Roles: roles} }

// Owner adds an ownership predicate to r.
func (r Requirement) Owner(ownerID string) Requirement {
	r.RequireOwner = true
	r.OwnerID = ownerID
	return r
}

// Check returns nil when claims satisfy req.
func Check(claims *utils.Claims, req Requirement) error {
	if claims == nil || claims.UserID == "" {
		return ErrUnauthenticated
	}
	if len(req.Roles) > 0 {
		allowed := false
		for _, role := range req.Roles {
			if claims.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrForbidden
		}
	}
	if req.RequireOwner && (req.OwnerID == "" || req.OwnerID != claims.UserID) {
		return ErrForbidden
	}
	return nil
}
