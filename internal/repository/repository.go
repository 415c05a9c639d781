package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

// ErrTaskMissing is returned when a write references a task that does not exist.
var ErrTaskMissing = errors.New("task does not exist")

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a task together with its initial assignees
	Create(ctx context.Context, task *models.Task, assigneeIDs []string) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id string, preload ...string) (*models.Task, error)

	// List retrieves a page of tasks matching the filter
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// Update applies a patch and recomputes the status in one transaction
	Update(ctx context.Context, id string, patch TaskPatch) (*models.Task, error)

	// UpdateStatus sets the status of a task the given user is assigned to
	UpdateStatus(ctx context.Context, id, assigneeID string, status models.TaskStatus) (*models.Task, error)

	// AddAssignee inserts an assignment if absent and applies the transition when it was added
	AddAssignee(ctx context.Context, taskID, userID string, transition StatusTransition) (bool, error)

	// RemoveAssignee deletes an assignment if present
	RemoveAssignee(ctx context.Context, taskID, userID string) error

	// AppendUploads adds asset references to a task
	AppendUploads(ctx context.Context, id string, refs []string) (*models.Task, error)

	// Delete removes a task with its assignments and comments
	Delete(ctx context.Context, id string) error

	// Exists reports whether a task with the ID exists
	Exists(ctx context.Context, id string) (bool, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Field          *utils.Filter
	AssignedUserID *string
	Pagination     utils.PaginationParams
}

// TaskPatch holds the fields of a full update. Nil pointers are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	AssigneeIDs *[]string

	// StatusFor derives the status from the resulting number of assignees.
	StatusFor func(assignees int64) models.TaskStatus
}

// StatusTransition is a conditional status change.
type StatusTransition struct {
	From models.TaskStatus
	To   models.TaskStatus
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// CreateLinked inserts a comment and appends it to its task's comment list
	CreateLinked(ctx context.Context, comment *models.Comment) error

	// FindByID finds a comment by ID with optional preloading
	FindByID(ctx context.Context, id string, preload ...string) (*models.Comment, error)

	// Exists reports whether a comment with the ID exists
	Exists(ctx context.Context, id string) (bool, error)

	// List retrieves a page of comments, newest updated first
	List(ctx context.Context, filter CommentFilter) ([]models.Comment, error)

	// ListForTask returns the comments linked to a task in link order
	ListForTask(ctx context.Context, taskID string) ([]models.Comment, error)

	// UpdateBody replaces the text of a comment
	UpdateBody(ctx context.Context, id, body string) (*models.Comment, error)

	// Delete removes a comment and its task link
	Delete(ctx context.Context, id string) error
}

// CommentFilter holds filtering options for listing comments
type CommentFilter struct {
	Field      *utils.Filter
	Pagination utils.PaginationParams
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByEmails returns the users matching any of the emails
	FindByEmails(ctx context.Context, emails []string) ([]models.User, error)

	// List retrieves a page of users matching the filter
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	Field      *utils.Filter
	Pagination utils.PaginationParams
}
