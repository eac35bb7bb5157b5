package middleware

import (
	"context"  // Context for user lookup
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library

	"yamdb/internal/apperror"    // Error taxonomy
	"yamdb/internal/domain"      // Domain models
	"yamdb/internal/permissions" // Request principal
	"yamdb/internal/utils"       // JWT utility functions
)

const principalKey = "principal" // gin context key of the request principal

// UserLookup resolves the user a token was issued to
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
}

// Authenticate resolves the request principal. Requests without an
// Authorization header continue as anonymous; a malformed, expired or
// orphaned token is rejected with 401.
func Authenticate(secret string, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		if authHeader == "" {
			c.Set(principalKey, permissions.Anonymous())
			c.Next()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header"})
			return
		}
		claims, err := utils.ParseJWT(strings.TrimPrefix(authHeader, "Bearer "), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			logrus.WithFields(logrus.Fields{"user_id": claims.UserID, "error": err}).Error("Failed to resolve token user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.Set(principalKey, permissions.FromUser(*user)) // Store principal in context
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by Authenticate, anonymous if none
func PrincipalFrom(c *gin.Context) permissions.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(permissions.Principal); ok {
			return p
		}
	}
	return permissions.Anonymous()
}
