package permissions

import (
	"net/http"

	"yamdb/internal/apperror"
)

// Policy decides whether a principal may perform a method on a resource.
// HasPermission gates the endpoint itself, HasObjectPermission gates a
// specific object owned by ownerID.
type Policy interface {
	Name() string
	HasPermission(method string, p Principal) bool
	HasObjectPermission(method string, p Principal, ownerID uint) bool
}

// IsSafe reports whether method never mutates state
func IsSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// AuthorOrStaffReadWrite lets anyone read; owners and moderators may mutate objects.
type AuthorOrStaffReadWrite struct{}

func (AuthorOrStaffReadWrite) Name() string { return "author_or_staff_read_write" }

func (AuthorOrStaffReadWrite) HasPermission(method string, p Principal) bool {
	return IsSafe(method) || p.Authenticated
}

func (AuthorOrStaffReadWrite) HasObjectPermission(method string, p Principal, ownerID uint) bool {
	return IsSafe(method) || (p.Authenticated && (p.Owns(ownerID) || p.Moderator))
}

// AdminOnly restricts every method to admins. At object level a user may
// also act on their own record.
type AdminOnly struct{}

func (AdminOnly) Name() string { return "admin_only" }

func (AdminOnly) HasPermission(method string, p Principal) bool {
	return p.Authenticated && (p.Admin || p.Superuser)
}

func (AdminOnly) HasObjectPermission(method string, p Principal, ownerID uint) bool {
	return p.Owns(ownerID) || (p.Authenticated && (p.Admin || p.Superuser))
}

// AdminOrReadOnly lets anyone read; only admins may mutate.
type AdminOrReadOnly struct{}

func (AdminOrReadOnly) Name() string { return "admin_or_read_only" }

func (AdminOrReadOnly) HasPermission(method string, p Principal) bool {
	return IsSafe(method) || (p.Authenticated && p.Admin) || p.Superuser
}

// Catalog objects have no owner, so the object check repeats the collection check.
func (a AdminOrReadOnly) HasObjectPermission(method string, p Principal, _ uint) bool {
	return a.HasPermission(method, p)
}

// AuthorModeratorAdminReadOnly lets anyone read; any authenticated user may
// create; only the author, moderators and admins may mutate an object.
type AuthorModeratorAdminReadOnly struct{}

func (AuthorModeratorAdminReadOnly) Name() string { return "author_moderator_admin_read_only" }

func (AuthorModeratorAdminReadOnly) HasPermission(method string, p Principal) bool {
	return IsSafe(method) || p.Authenticated
}

func (AuthorModeratorAdminReadOnly) HasObjectPermission(method string, p Principal, ownerID uint) bool {
	if IsSafe(method) {
		return true
	}
	return p.Authenticated && (p.Owns(ownerID) || p.Moderator || p.Admin)
}

// Authenticated admits any authenticated principal, used for /users/me
type Authenticated struct{}

func (Authenticated) Name() string { return "authenticated" }

func (Authenticated) HasPermission(method string, p Principal) bool {
	return p.Authenticated
}

func (Authenticated) HasObjectPermission(method string, p Principal, ownerID uint) bool {
	return p.Owns(ownerID)
}

// Denied converts a negative decision into an error: anonymous principals
// get Unauthorized, authenticated ones Forbidden.
func Denied(p Principal) error {
	if !p.Authenticated {
		return apperror.Unauthorized("authentication credentials were not provided")
	}
	return apperror.Forbidden("you do not have permission to perform this action")
}

// CheckCollection runs the collection-level phase of policy
func CheckCollection(policy Policy, method string, p Principal) error {
	if policy.HasPermission(method, p) {
		return nil
	}
	return Denied(p)
}

// CheckObject runs both phases of policy against an object owned by ownerID
func CheckObject(policy Policy, method string, p Principal, ownerID uint) error {
	if policy.HasPermission(method, p) && policy.HasObjectPermission(method, p, ownerID) {
		return nil
	}
	return Denied(p)
}
