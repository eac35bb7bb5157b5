package middleware

import (
	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library

	"yamdb/internal/apperror"    // Error taxonomy
	"yamdb/internal/metrics"     // Denial counters
	"yamdb/internal/permissions" // Authorization policies
)

// Authorize runs the collection-level check of policy before the handler
// loads anything. m may be nil.
func Authorize(policy permissions.Policy, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if err := permissions.CheckCollection(policy, c.Request.Method, p); err != nil {
			kind := apperror.KindOf(err)
			m.ObserveDenial(policy.Name(), string(kind))
			logrus.WithFields(logrus.Fields{
				"policy":  policy.Name(),
				"method":  c.Request.Method,
				"path":    c.FullPath(),
				"user_id": p.UserID,
			}).Info("Request denied")
			c.AbortWithStatusJSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}
