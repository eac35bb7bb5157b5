// Package permissions holds the authorization policies. Every decision is a
// pure function of the request method, the acting Principal and, for
// object-level checks, the id of the user owning the target object.
package permissions

import "yamdb/internal/domain"

// Principal is the identity attached to a request
type Principal struct {
	UserID        uint   // Zero for the anonymous principal
	Username      string // Empty for the anonymous principal
	Authenticated bool   // A valid bearer token resolved to a user
	Moderator     bool   // Role is moderator
	Admin         bool   // Role is admin, or staff/superuser flag set
	Superuser     bool   // Superuser flag set
}

// Anonymous returns the principal of an unauthenticated request
func Anonymous() Principal {
	return Principal{}
}

// FromUser derives the capabilities of an authenticated user
func FromUser(u domain.User) Principal {
	return Principal{
		UserID:        u.ID,
		Username:      u.Username,
		Authenticated: true,
		Moderator:     u.IsModerator(),
		Admin:         u.IsAdmin(),
		Superuser:     u.IsSuperuser,
	}
}

// Owns reports whether the principal is the user identified by ownerID
func (p Principal) Owns(ownerID uint) bool {
	return p.Authenticated && ownerID != 0 && p.UserID == ownerID
}
