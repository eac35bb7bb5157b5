package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library

	"yamdb/internal/domain"     // Domain models
	"yamdb/internal/middleware" // Request principal
	"yamdb/internal/store"      // Persistence
)

// UserRequest is the payload for an admin user creation
type UserRequest struct {
	Username  string      `json:"username" binding:"required,max=150,username"` // Unique username
	Email     string      `json:"email" binding:"required,email,max=254"`       // Unique email
	FirstName string      `json:"first_name" binding:"max=150"`                 // Optional first name
	LastName  string      `json:"last_name" binding:"max=150"`                  // Optional last name
	Bio       string      `json:"bio"`                                          // Optional biography
	Role      domain.Role `json:"role" binding:"omitempty,role"`                // Defaults to user
}

// UserPatchRequest is the payload for a partial user update
type UserPatchRequest struct {
	Username  *string      `json:"username"`
	Email     *string      `json:"email"`
	FirstName *string      `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string      `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string      `json:"bio"`
	Role      *domain.Role `json:"role"`
}

func (r UserPatchRequest) patch() store.UserPatch {
	return store.UserPatch{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
		Role:      r.Role,
	}
}

// ListUsersHandler lists users, searchable by username
func ListUsersHandler(users *store.UserStore, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := pageFromQuery(c, pageSize)
		items, total, err := users.List(c.Request.Context(), middleware.PrincipalFrom(c), c.Query("search"), page)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newPage(items, total, page))
	}
}

// CreateUserHandler adds a user with an explicit role
func CreateUserHandler(users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		u, err := users.Create(c.Request.Context(), middleware.PrincipalFrom(c), store.UserInput{
			Username:  req.Username,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Bio:       req.Bio,
			Role:      req.Role,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("User created")
		c.JSON(http.StatusCreated, u)
	}
}

// GetUserHandler returns a user by username
func GetUserHandler(users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.Get(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("username"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// UpdateUserHandler partially updates a user
func UpdateUserHandler(users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UserPatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		u, err := users.Update(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("username"), req.patch())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// DeleteUserHandler removes a user with their reviews and comments
func DeleteUserHandler(users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")
		if err := users.Delete(c.Request.Context(), middleware.PrincipalFrom(c), username); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"username": username}).Info("User deleted")
		c.Status(http.StatusNoContent)
	}
}

// MeHandler returns the caller's own account
func MeHandler(users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := middleware.PrincipalFrom(c)
		u, err := users.FindByID(c.Request.Context(), p.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// UpdateMeHandler edits the caller's own account; role changes are ignored
func UpdateMeHandler(users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UserPatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		u, err := users.UpdateMe(c.Request.Context(), middleware.PrincipalFrom(c), req.patch())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}
