package domain

// Role is the permission level stored on a User
type Role string

// Roles a User can hold
const (
	RoleUser      Role = "user"      // Default role for signed-up users
	RoleModerator Role = "moderator" // May edit and delete any review or comment
	RoleAdmin     Role = "admin"     // Full catalog and user management
)

// Valid reports whether r is one of the enumerated roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// ReservedUsername cannot be registered because it collides with the /users/me route
const ReservedUsername = "me"

// User Model
type User struct {
	ID               uint   `gorm:"primaryKey" json:"-"`                           // Primary key
	Username         string `gorm:"size:150;uniqueIndex;not null" json:"username"` // Unique username
	Email            string `gorm:"size:254;uniqueIndex;not null" json:"email"`    // Unique email
	FirstName        string `gorm:"size:150" json:"first_name"`                    // Optional first name
	LastName         string `gorm:"size:150" json:"last_name"`                     // Optional last name
	Bio              string `gorm:"type:text" json:"bio"`                          // Free-form biography
	Role             Role   `gorm:"size:30;not null;default:user" json:"role"`     // Role: user, moderator or admin
	IsStaff          bool   `gorm:"not null;default:false" json:"-"`               // Staff flag, grants admin capabilities
	IsSuperuser      bool   `gorm:"not null;default:false" json:"-"`               // Superuser flag, grants admin capabilities
	ConfirmationCode string `gorm:"size:72" json:"-"`                              // bcrypt hash of the pending confirmation code
}

// IsModerator is true for users holding the moderator role
func (u User) IsModerator() bool {
	return u.Role == RoleModerator
}

// IsAdmin is true for admins, staff and superusers
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsStaff || u.IsSuperuser
}
