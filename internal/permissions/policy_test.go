package permissions

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"yamdb/internal/apperror"
	"yamdb/internal/domain"
)

const ownerID = 7

var (
	anonymous = Anonymous()
	owner     = FromUser(domain.User{ID: ownerID, Username: "owner", Role: domain.RoleUser})
	stranger  = FromUser(domain.User{ID: 8, Username: "stranger", Role: domain.RoleUser})
	moderator = FromUser(domain.User{ID: 9, Username: "mod", Role: domain.RoleModerator})
	admin     = FromUser(domain.User{ID: 10, Username: "admin", Role: domain.RoleAdmin})
	staff     = FromUser(domain.User{ID: 11, Username: "staff", Role: domain.RoleUser, IsStaff: true})
	superuser = FromUser(domain.User{ID: 12, Username: "root", Role: domain.RoleUser, IsSuperuser: true})
)

type decision struct {
	name       string
	method     string
	principal  Principal
	collection bool
	object     bool
}

func runTable(t *testing.T, policy Policy, table []decision) {
	t.Helper()
	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.collection, policy.HasPermission(tt.method, tt.principal), "collection")
			assert.Equal(t, tt.object, policy.HasObjectPermission(tt.method, tt.principal, ownerID), "object")
		})
	}
}

func TestIsSafe(t *testing.T) {
	assert.True(t, IsSafe(http.MethodGet))
	assert.True(t, IsSafe(http.MethodHead))
	assert.True(t, IsSafe(http.MethodOptions))
	assert.False(t, IsSafe(http.MethodPost))
	assert.False(t, IsSafe(http.MethodPatch))
	assert.False(t, IsSafe(http.MethodDelete))
}

func TestFromUser(t *testing.T) {
	assert.False(t, anonymous.Authenticated)
	assert.False(t, anonymous.Admin)
	assert.False(t, anonymous.Moderator)

	assert.True(t, moderator.Moderator)
	assert.False(t, moderator.Admin)
	assert.True(t, staff.Admin)
	assert.True(t, superuser.Admin)
	assert.True(t, superuser.Superuser)
	assert.True(t, owner.Owns(ownerID))
	assert.False(t, stranger.Owns(ownerID))
	assert.False(t, anonymous.Owns(0))
}

func TestAuthorOrStaffReadWrite(t *testing.T) {
	runTable(t, AuthorOrStaffReadWrite{}, []decision{
		{"anonymous read", http.MethodGet, anonymous, true, true},
		{"anonymous write", http.MethodPost, anonymous, false, false},
		{"owner patch", http.MethodPatch, owner, true, true},
		{"stranger patch", http.MethodPatch, stranger, true, false},
		{"moderator delete", http.MethodDelete, moderator, true, true},
		{"admin without moderator role delete", http.MethodDelete, admin, true, false},
	})
}

func TestAdminOnly(t *testing.T) {
	runTable(t, AdminOnly{}, []decision{
		{"anonymous read", http.MethodGet, anonymous, false, false},
		{"user read", http.MethodGet, stranger, false, false},
		{"user self object", http.MethodPatch, owner, false, true},
		{"moderator read", http.MethodGet, moderator, false, false},
		{"admin write", http.MethodPost, admin, true, true},
		{"staff write", http.MethodDelete, staff, true, true},
		{"superuser write", http.MethodPatch, superuser, true, true},
	})
}

func TestAdminOrReadOnly(t *testing.T) {
	runTable(t, AdminOrReadOnly{}, []decision{
		{"anonymous read", http.MethodGet, anonymous, true, true},
		{"anonymous write", http.MethodPost, anonymous, false, false},
		{"user write", http.MethodPost, stranger, false, false},
		{"moderator write", http.MethodDelete, moderator, false, false},
		{"admin write", http.MethodPatch, admin, true, true},
		{"staff write", http.MethodPost, staff, true, true},
		{"superuser write", http.MethodDelete, superuser, true, true},
	})
}

func TestAuthorModeratorAdminReadOnly(t *testing.T) {
	runTable(t, AuthorModeratorAdminReadOnly{}, []decision{
		{"anonymous read", http.MethodGet, anonymous, true, true},
		{"anonymous create", http.MethodPost, anonymous, false, false},
		{"anonymous patch", http.MethodPatch, anonymous, false, false},
		{"user create", http.MethodPost, stranger, true, false},
		{"author patch", http.MethodPatch, owner, true, true},
		{"non-owner patch is denied", http.MethodPatch, stranger, true, false},
		{"non-owner delete is denied", http.MethodDelete, stranger, true, false},
		{"moderator patch", http.MethodPatch, moderator, true, true},
		{"admin delete", http.MethodDelete, admin, true, true},
		{"staff delete", http.MethodDelete, staff, true, true},
	})
}

func TestAuthenticated(t *testing.T) {
	runTable(t, Authenticated{}, []decision{
		{"anonymous", http.MethodGet, anonymous, false, false},
		{"self", http.MethodPatch, owner, true, true},
		{"other", http.MethodPatch, stranger, true, false},
	})
}

func TestChecksReturnClassifiedErrors(t *testing.T) {
	policy := AuthorModeratorAdminReadOnly{}

	assert.NoError(t, CheckCollection(policy, http.MethodGet, anonymous))
	assert.True(t, apperror.Is(CheckCollection(policy, http.MethodPost, anonymous), apperror.KindUnauthorized))

	assert.NoError(t, CheckObject(policy, http.MethodPatch, owner, ownerID))
	assert.True(t, apperror.Is(CheckObject(policy, http.MethodPatch, stranger, ownerID), apperror.KindForbidden))
	assert.True(t, apperror.Is(CheckObject(AdminOrReadOnly{}, http.MethodDelete, stranger, 0), apperror.KindForbidden))
}
