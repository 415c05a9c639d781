package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// CreateComment posts a comment on a task, optionally as a reply
func (h *CommentHandler) CreateComment(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	type CreateCommentRequest struct {
		TaskID    string  `json:"task_id" binding:"required"`
		Comment   string  `json:"comment" binding:"required"`
		RepliedID *string `json:"replied_id"`
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), identity, services.CreateCommentInput{
		TaskID:    req.TaskID,
		Body:      req.Comment,
		RepliedID: req.RepliedID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusCreated, "Comment created successfully", gin.H{"comment": dto.ToCommentDTO(*comment)})
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	query := utils.GetPaginationParams(c)

	comments, params, err := h.commentService.ListComments(c.Request.Context(), services.ListCommentsInput{
		Page:  query.Page,
		Limit: query.Limit,
		Field: c.Query("field"),
		Value: c.Query("value"),
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, "Comments fetched successfully", gin.H{
		"comments":   dto.ToCommentListItemDTOs(comments),
		"pagination": utils.PaginationResponse{Page: params.Page, Limit: params.Limit},
	})
}

func (h *CommentHandler) GetComment(c *gin.Context) {
	comment, err := h.commentService.GetComment(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, "Comment fetched successfully", gin.H{"comment": dto.ToCommentDTO(*comment)})
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	type UpdateCommentRequest struct {
		Comment string `json:"comment" binding:"required"`
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	comment, err := h.commentService.UpdateComment(c.Request.Context(), c.Param("id"), req.Comment)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, "Comment updated successfully", gin.H{"comment": dto.ToCommentDTO(*comment)})
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	if err := h.commentService.DeleteComment(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, "Comment deleted successfully", nil)
}
