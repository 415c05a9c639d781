package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

// UserHandler serves the user directory listing.
type UserHandler struct {
	authService *services.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// ListUsers returns a page of users, optionally filtered by role.
func (h *UserHandler) ListUsers(c *gin.Context) {
	query := utils.GetPaginationParams(c)

	users, params, err := h.authService.ListUsers(c.Request.Context(), services.ListUsersInput{
		Page:  query.Page,
		Limit: query.Limit,
		Role:  c.Query("role"),
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	items := make([]dto.UserDTO, len(users))
	for i, u := range users {
		items[i] = dto.ToUserDTO(u)
	}

	respond(c, http.StatusOK, "Users fetched successfully", gin.H{
		"users":      items,
		"pagination": utils.PaginationResponse{Page: params.Page, Limit: params.Limit},
	})
}
