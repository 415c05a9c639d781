package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/authz"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
)

// respond writes the success envelope shared by every endpoint. Error
// responses carry the same status and message fields.
func respond(c *gin.Context, status int, message string, fields gin.H) {
	body := gin.H{
		"status":  status,
		"message": message,
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

func requireIdentity(c *gin.Context) (authz.Identity, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return identity, ok
}
