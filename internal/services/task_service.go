package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/task-tracker-api/internal/authz"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/directory"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/logging"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrAssigneesNotFound       = apierrors.Validation("Assigned users do not exist")
	ErrUpdateAssigneesNotFound = apierrors.Validation("One or more assigned user emails do not exist")
	ErrInvalidTaskID           = apierrors.Validation("Invalid task ID")
	ErrInvalidStatus           = apierrors.Validation("Invalid task status")
	ErrTitleRequired           = apierrors.Validation("Title is required")
	ErrNoUploads               = apierrors.Validation("No files uploaded")
	ErrInvalidFilterField      = apierrors.Validation("Invalid filter field")
	ErrInvalidFilterValue      = apierrors.Validation("Invalid filter value")
	ErrTaskNotFound            = apierrors.NotFoundError("Task not found")
	ErrNoTasksFound            = apierrors.NotFoundError("No tasks found")
	ErrNoAssignedTasks         = apierrors.NotFoundError("No tasks found or not assigned to you")
	ErrTaskNotAssigned         = apierrors.NotFoundError("Task not found or not assigned to you")
	ErrUserNotInDirectory      = apierrors.NotFoundError("User with given email does not exist")
	ErrAIServiceNotConfigured  = apierrors.Unavailable("AI service is not configured")
)

var assignedTaskFilterFields = map[string]utils.FilterField{
	"status": {Column: "tasks.status"},
	"title":  {Column: "tasks.title"},
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	commentRepo repository.CommentRepository
	directory   directory.Directory
	aiService   *AIService
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, commentRepo repository.CommentRepository, dir directory.Directory, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		commentRepo: commentRepo,
		directory:   dir,
		aiService:   aiService,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	AssignedTo  []string
	StartDate   time.Time
	EndDate     time.Time
}

// ListTasksInput represents filters for listing all tasks
type ListTasksInput struct {
	Page   int
	Limit  int
	Status string
}

// ListAssignedTasksInput represents filters for listing the caller's tasks
type ListAssignedTasksInput struct {
	Page  int
	Limit int
	Field string
	Value string
}

// UpdateTaskInput represents a full update. Nil fields are left unchanged.
// Status is accepted but always replaced by the value derived from the assignees.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	AssignedTo  *[]string
	Status      *models.TaskStatus
}

// AddUserResult reports the task after an add-user call.
type AddUserResult struct {
	Task            *models.Task
	AlreadyAssigned bool
}

// CreateTask validates the assignees and creates the task with its derived status
func (s *TaskService) CreateTask(ctx context.Context, requester authz.Identity, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	assigneeIDs, err := s.resolveAssignees(ctx, input.AssignedTo, ErrAssigneesNotFound)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      statusForAssignees(int64(len(assigneeIDs))),
		CreatorID:   requester.UserID,
		Uploads:     []string{},
	}

	if err := s.taskRepo.Create(ctx, task, assigneeIDs); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logging.Logger.WithFields(map[string]interface{}{
		"task_id":   task.ID,
		"user_id":   requester.UserID,
		"assignees": len(assigneeIDs),
	}).Info("task created")

	return s.loadTask(ctx, task.ID)
}

// ListTasks returns a page of all tasks. An empty page is reported as not found.
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, utils.PaginationParams, error) {
	params := utils.NewPaginationParams(input.Page, input.Limit)

	filter := repository.TaskFilter{Pagination: params}
	if input.Status != "" {
		status := models.TaskStatus(input.Status)
		if !status.Valid() {
			return nil, params, ErrInvalidStatus
		}
		filter.Field = &utils.Filter{Column: "tasks.status", Value: status}
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, params, fmt.Errorf("failed to list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil, params, ErrNoTasksFound
	}

	return tasks, params, nil
}

// ListAssignedTasks returns a page of the tasks assigned to the requester
func (s *TaskService) ListAssignedTasks(ctx context.Context, requester authz.Identity, input ListAssignedTasksInput) ([]models.Task, utils.PaginationParams, error) {
	params := utils.NewPaginationParams(input.Page, input.Limit)

	field, err := parseFilter(input.Field, input.Value, assignedTaskFilterFields)
	if err != nil {
		return nil, params, err
	}

	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{
		Field:          field,
		AssignedUserID: &requester.UserID,
		Pagination:     params,
	})
	if err != nil {
		return nil, params, fmt.Errorf("failed to list assigned tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil, params, ErrNoAssignedTasks
	}

	return tasks, params, nil
}

// GetTask returns a task with its comments in link order
func (s *TaskService) GetTask(ctx context.Context, id string) (*models.Task, []models.Comment, error) {
	if !validID(id) {
		return nil, nil, ErrTaskNotFound
	}

	task, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	comments, err := s.commentRepo.ListForTask(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load task comments: %w", err)
	}

	return task, comments, nil
}

// UpdateTask applies a full update and recomputes the status from the resulting assignees
func (s *TaskService) UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (*models.Task, error) {
	if !validID(id) {
		return nil, ErrInvalidTaskID
	}

	patch := repository.TaskPatch{
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		StatusFor:   statusForAssignees,
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		patch.Title = &title
	}

	if input.AssignedTo != nil {
		assigneeIDs, err := s.resolveAssignees(ctx, *input.AssignedTo, ErrUpdateAssigneesNotFound)
		if err != nil {
			return nil, err
		}
		patch.AssigneeIDs = &assigneeIDs
	}

	task, err := s.taskRepo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	logging.Logger.WithFields(map[string]interface{}{
		"task_id": id,
		"status":  task.Status,
	}).Info("task updated")

	return task, nil
}

// UpdateStatus sets the status of a task assigned to the requester
func (s *TaskService) UpdateStatus(ctx context.Context, requester authz.Identity, id string, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if !validID(id) {
		return nil, ErrInvalidTaskID
	}

	task, err := s.taskRepo.UpdateStatus(ctx, id, requester.UserID, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotAssigned
		}
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	logging.Logger.WithFields(map[string]interface{}{
		"task_id": id,
		"user_id": requester.UserID,
		"status":  status,
	}).Info("task status updated")

	return task, nil
}

// AddUser assigns the user with the email to a task. Adding a user who is
// already assigned changes nothing and is reported in the result.
func (s *TaskService) AddUser(ctx context.Context, id, email string) (*AddUserResult, error) {
	if !validID(id) {
		return nil, ErrInvalidTaskID
	}

	entry, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.ensureTaskExists(ctx, id); err != nil {
		return nil, err
	}

	added, err := s.taskRepo.AddAssignee(ctx, id, entry.ID, assignPromotion)
	if err != nil {
		return nil, fmt.Errorf("failed to add user to task: %w", err)
	}

	task, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if added {
		logging.Logger.WithFields(map[string]interface{}{
			"task_id": id,
			"user_id": entry.ID,
		}).Info("user added to task")
	}

	return &AddUserResult{Task: task, AlreadyAssigned: !added}, nil
}

// RemoveUser unassigns the user with the email. The status is left as is.
func (s *TaskService) RemoveUser(ctx context.Context, id, email string) (*models.Task, error) {
	if !validID(id) {
		return nil, ErrInvalidTaskID
	}

	if err := s.ensureTaskExists(ctx, id); err != nil {
		return nil, err
	}

	entry, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.RemoveAssignee(ctx, id, entry.ID); err != nil {
		return nil, fmt.Errorf("failed to remove user from task: %w", err)
	}

	logging.Logger.WithFields(map[string]interface{}{
		"task_id": id,
		"user_id": entry.ID,
	}).Info("user removed from task")

	return s.loadTask(ctx, id)
}

// DeleteTask removes a task together with its assignments and comments
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrInvalidTaskID
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	logging.Logger.WithField("task_id", id).Info("task deleted")
	return nil
}

// AttachUploads appends asset references to a task
func (s *TaskService) AttachUploads(ctx context.Context, id string, refs []string) (*models.Task, error) {
	if !validID(id) {
		return nil, ErrInvalidTaskID
	}
	if len(refs) == 0 {
		return nil, ErrNoUploads
	}

	if _, err := s.taskRepo.AppendUploads(ctx, id, refs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to attach uploads: %w", err)
	}

	return s.loadTask(ctx, id)
}

// GenerateTasks drafts tasks from free text. Drafts are not saved.
func (s *TaskService) GenerateTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	drafts, err := s.aiService.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(drafts) > constants.MaxAIGeneratedTasks {
		drafts = drafts[:constants.MaxAIGeneratedTasks]
	}
	return drafts, nil
}

func (s *TaskService) loadTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id, "Creator", "Assignments.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) ensureTaskExists(ctx context.Context, id string) error {
	exists, err := s.taskRepo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find task: %w", err)
	}
	if !exists {
		return ErrTaskNotFound
	}
	return nil
}

func (s *TaskService) lookupUser(ctx context.Context, email string) (directory.Entry, error) {
	entry, err := s.directory.ResolveByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return directory.Entry{}, ErrUserNotInDirectory
		}
		return directory.Entry{}, err
	}
	return entry, nil
}

// resolveAssignees maps emails to user IDs in the given order. A blank,
// repeated or unknown email fails with missing.
func (s *TaskService) resolveAssignees(ctx context.Context, emails []string, missing error) ([]string, error) {
	if len(emails) == 0 {
		return []string{}, nil
	}

	normalized := make([]string, len(emails))
	seen := make(map[string]struct{}, len(emails))
	for i, e := range emails {
		e = normalizeEmail(e)
		if _, dup := seen[e]; dup || e == "" {
			return nil, missing
		}
		seen[e] = struct{}{}
		normalized[i] = e
	}

	found, err := s.directory.ResolveEmails(ctx, normalized)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(normalized))
	for _, email := range normalized {
		entry, ok := found[email]
		if !ok || entry.ID == "" {
			return nil, missing
		}
		ids = append(ids, entry.ID)
	}
	return ids, nil
}

// normalizeEmail matches the form emails are stored in at signup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseFilter(field, value string, fields map[string]utils.FilterField) (*utils.Filter, error) {
	filter, err := utils.ParseFilter(field, value, fields)
	switch {
	case errors.Is(err, utils.ErrUnknownFilterField):
		return nil, ErrInvalidFilterField
	case errors.Is(err, utils.ErrInvalidFilterValue):
		return nil, ErrInvalidFilterValue
	}
	return filter, err
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
