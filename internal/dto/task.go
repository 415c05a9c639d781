package dto

import (
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

// TaskDTO represents a task in API responses. Users are addressed by email.
type TaskDTO struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	StartDate   time.Time         `json:"start_date"`
	EndDate     time.Time         `json:"end_date"`
	Status      models.TaskStatus `json:"status"`
	CreatedBy   string            `json:"created_by"`
	AssignedTo  []string          `json:"assigned_to"`
	Uploads     []string          `json:"uploads"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// RepliedToDTO is the inline view of the comment a reply answers
type RepliedToDTO struct {
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username"`
	Comment  string `json:"comment"`
}

// TaskCommentDTO represents a comment embedded in a task detail response
type TaskCommentDTO struct {
	ID        string        `json:"id"`
	Username  string        `json:"username"`
	Comment   string        `json:"comment"`
	UpdatedAt time.Time     `json:"updated_at"`
	RepliedTo *RepliedToDTO `json:"replied_to,omitempty"`
}

// TaskDetailDTO represents a single task with its comment thread
type TaskDetailDTO struct {
	TaskDTO
	Comments []TaskCommentDTO `json:"comments"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		StartDate:   task.StartDate,
		EndDate:     task.EndDate,
		Status:      task.Status,
		CreatedBy:   task.Creator.Email,
		AssignedTo:  make([]string, 0, len(task.Assignments)),
		Uploads:     task.Uploads,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	for _, assignment := range task.Assignments {
		dto.AssignedTo = append(dto.AssignedTo, assignment.User.Email)
	}
	if dto.Uploads == nil {
		dto.Uploads = []string{}
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToTaskDetailDTO converts a task and its linked comments
func ToTaskDetailDTO(task models.Task, comments []models.Comment) TaskDetailDTO {
	detail := TaskDetailDTO{
		TaskDTO:  ToTaskDTO(task),
		Comments: make([]TaskCommentDTO, len(comments)),
	}

	for i, c := range comments {
		detail.Comments[i] = TaskCommentDTO{
			ID:        c.ID,
			Username:  c.Author.Username,
			Comment:   c.Body,
			UpdatedAt: c.UpdatedAt,
			RepliedTo: toRepliedTo(c.Parent, false),
		}
	}

	return detail
}

func toRepliedTo(parent *models.Comment, withUserID bool) *RepliedToDTO {
	if parent == nil {
		return nil
	}

	replied := &RepliedToDTO{
		Username: parent.Author.Username,
		Comment:  parent.Body,
	}
	if withUserID {
		replied.UserID = parent.UserID
	}
	return replied
}
