package middleware

import (
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/authz"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/directory"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// RequireAuth authenticates the caller with a bearer token or, when no
// Authorization header is sent, the session cookie. The caller is resolved
// through the directory and stored in the context as an authz.Identity.
func RequireAuth(tokens *services.TokenIssuer, dir directory.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticatedUserID(c, tokens)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		entry, err := dir.ResolveByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, directory.ErrNotFound) {
				apierrors.Unauthorized(c, "")
			} else {
				apierrors.Respond(c, err)
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, entry.ID)
		c.Set(constants.ContextKeyIdentity, authz.Identity{
			UserID:   entry.ID,
			Email:    entry.Email,
			Username: entry.Username,
			Role:     entry.Role,
		})
		c.Next()
	}
}

func authenticatedUserID(c *gin.Context, tokens *services.TokenIssuer) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		if !strings.HasPrefix(header, constants.BearerPrefix) {
			return "", false
		}
		claims, err := tokens.Parse(strings.TrimPrefix(header, constants.BearerPrefix))
		if err != nil {
			return "", false
		}
		return claims.UserID, true
	}

	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return "", false
	}
	userID, ok := sessions.Default(c).Get(constants.ContextKeyUserID).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetIdentity retrieves the authenticated caller from context
func GetIdentity(c *gin.Context) (authz.Identity, bool) {
	value, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return authz.Identity{}, false
	}
	identity, ok := value.(authz.Identity)
	return identity, ok
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}
