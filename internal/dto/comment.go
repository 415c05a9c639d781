package dto

import (
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
)

// CommentListItemDTO represents a comment in list responses
type CommentListItemDTO struct {
	CommentID string    `json:"comment_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	TaskID    string    `json:"task_id"`
	TaskTitle string    `json:"task_title"`
	Comment   string    `json:"comment"`
	Replied   bool      `json:"replied"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentDTO represents a single comment with its replied-to parent
type CommentDTO struct {
	CommentListItemDTO
	RepliedTo *RepliedToDTO `json:"replied_to,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ToCommentListItemDTO converts a Comment model with Author and Task preloaded
func ToCommentListItemDTO(c models.Comment) CommentListItemDTO {
	return CommentListItemDTO{
		CommentID: c.ID,
		UserID:    c.UserID,
		Username:  c.Author.Username,
		TaskID:    c.TaskID,
		TaskTitle: c.Task.Title,
		Comment:   c.Body,
		Replied:   c.Replied,
		CreatedAt: c.CreatedAt,
	}
}

// ToCommentListItemDTOs converts a slice of comments
func ToCommentListItemDTOs(comments []models.Comment) []CommentListItemDTO {
	items := make([]CommentListItemDTO, len(comments))
	for i, c := range comments {
		items[i] = ToCommentListItemDTO(c)
	}
	return items
}

// ToCommentDTO converts a Comment model with Author, Task and Parent.Author preloaded
func ToCommentDTO(c models.Comment) CommentDTO {
	return CommentDTO{
		CommentListItemDTO: ToCommentListItemDTO(c),
		RepliedTo:          toRepliedTo(c.Parent, true),
		UpdatedAt:          c.UpdatedAt,
	}
}
