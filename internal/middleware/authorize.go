package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/authz"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
)

// RequireOperation rejects callers whose role may not perform op.
// It must run after RequireAuth.
func RequireOperation(op authz.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !authz.Policy.Allows(op, identity.Role) {
			apierrors.Forbidden(c, "")
			c.Abort()
			return
		}

		c.Next()
	}
}
