package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/task-tracker-api/internal/authz"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/logging"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrParentCommentNotFound = apierrors.Validation("Message does not exist or incorrect ID")
	ErrCommentTaskNotFound   = apierrors.Validation("This Task does not exist")
	ErrCommentBodyRequired   = apierrors.Validation("Comment is required")
	ErrInvalidCommentID      = apierrors.Validation("Invalid comment ID")
	ErrCommentNotFound       = apierrors.NotFoundError("Comment not found")
	ErrNoCommentsFound       = apierrors.NotFoundError("No comments found")
)

var commentFilterFields = map[string]utils.FilterField{
	"taskId":  {Column: "task_id"},
	"userId":  {Column: "user_id"},
	"replied": {Column: "replied", Kind: utils.FilterBool},
}

// CommentService handles the comment thread of tasks
type CommentService struct {
	commentRepo repository.CommentRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repository.CommentRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo}
}

// CreateCommentInput represents input for posting a comment
type CreateCommentInput struct {
	TaskID    string
	Body      string
	RepliedID *string
}

// ListCommentsInput represents filters for listing comments
type ListCommentsInput struct {
	Page  int
	Limit int
	Field string
	Value string
}

// CreateComment posts a comment on a task, optionally as a reply to another comment
func (s *CommentService) CreateComment(ctx context.Context, requester authz.Identity, input CreateCommentInput) (*models.Comment, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, ErrCommentBodyRequired
	}

	repliedID := input.RepliedID
	if repliedID != nil && *repliedID == "" {
		repliedID = nil
	}

	if repliedID != nil {
		if !validID(*repliedID) {
			return nil, ErrParentCommentNotFound
		}
		exists, err := s.commentRepo.Exists(ctx, *repliedID)
		if err != nil {
			return nil, fmt.Errorf("failed to find replied comment: %w", err)
		}
		if !exists {
			return nil, ErrParentCommentNotFound
		}
	}

	if !validID(input.TaskID) {
		return nil, ErrCommentTaskNotFound
	}

	comment := &models.Comment{
		TaskID:    input.TaskID,
		UserID:    requester.UserID,
		Body:      body,
		RepliedID: repliedID,
		Replied:   repliedID != nil,
	}

	if err := s.commentRepo.CreateLinked(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrTaskMissing) {
			return nil, ErrCommentTaskNotFound
		}
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	logging.Logger.WithFields(map[string]interface{}{
		"comment_id": comment.ID,
		"task_id":    comment.TaskID,
		"user_id":    requester.UserID,
	}).Info("comment created")

	return s.GetComment(ctx, comment.ID)
}

// ListComments returns a page of comments, newest updated first
func (s *CommentService) ListComments(ctx context.Context, input ListCommentsInput) ([]models.Comment, utils.PaginationParams, error) {
	params := utils.NewPaginationParams(input.Page, input.Limit)

	field, err := parseFilter(input.Field, input.Value, commentFilterFields)
	if err != nil {
		return nil, params, err
	}

	comments, err := s.commentRepo.List(ctx, repository.CommentFilter{
		Field:      field,
		Pagination: params,
	})
	if err != nil {
		return nil, params, fmt.Errorf("failed to list comments: %w", err)
	}
	if len(comments) == 0 {
		return nil, params, ErrNoCommentsFound
	}

	return comments, params, nil
}

// GetComment returns a comment with its author, task and replied-to parent
func (s *CommentService) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	if !validID(id) {
		return nil, ErrCommentNotFound
	}

	comment, err := s.commentRepo.FindByID(ctx, id, "Author", "Task", "Parent.Author")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}

	return comment, nil
}

// UpdateComment replaces the text of a comment
func (s *CommentService) UpdateComment(ctx context.Context, id, body string) (*models.Comment, error) {
	if !validID(id) {
		return nil, ErrInvalidCommentID
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrCommentBodyRequired
	}

	if _, err := s.commentRepo.UpdateBody(ctx, id, body); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	logging.Logger.WithField("comment_id", id).Info("comment updated")
	return s.GetComment(ctx, id)
}

// DeleteComment removes a comment and its place in the task's comment list
func (s *CommentService) DeleteComment(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrInvalidCommentID
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	logging.Logger.WithField("comment_id", id).Info("comment deleted")
	return nil
}
