package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string    `json:"title" binding:"required"`
		Description string    `json:"description"`
		AssignedTo  []string  `json:"assigned_to"`
		StartDate   time.Time `json:"start_date" binding:"required"`
		EndDate     time.Time `json:"end_date" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), identity, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusCreated, "Task created successfully", gin.H{"task": dto.ToTaskDTO(*task)})
}

// ListTasks returns a page of all tasks, optionally filtered by status
func (h *TaskHandler) ListTasks(c *gin.Context) {
	query := utils.GetPaginationParams(c)

	tasks, params, err := h.taskService.ListTasks(c.Request.Context(), services.ListTasksInput{
		Page:   query.Page,
		Limit:  query.Limit,
		Status: c.Query("status"),
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, "Tasks fetched successfully", gin.H{
		"tasks":      dto.ToTaskDTOs(tasks),
		"pagination": utils.PaginationResponse{Page: params.Page, Limit: params.Limit},
	})
}

// ListAssignedTasks returns a page of the caller's tasks
func (h *TaskHandler) ListAssignedTasks(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	query := utils.GetPaginationParams(c)

	tasks, params, err := h.taskService.ListAssignedTasks(c.Request.Context(), identity, services.ListAssignedTasksInput{
		Page:  query.Page,
		Limit: query.Limit,
		Field: c.Query("field"),
		Value: c.Query("value"),
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, "Tasks fetched successfully", gin.H{
		"tasks":      dto.ToTaskDTOs(tasks),
		"pagination": utils.PaginationResponse{Page: params.Page, Limit: params.Limit},
	})
}

// GetTask returns a specific task with its comments
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, comments, err := h.taskService.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, "Task fetched successfully", gin.H{"task": dto.ToTaskDetailDTO(*task, comments)})
}

// UpdateTask applies a full update
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	type UpdateTaskRequest struct {
		Title       *string            `json:"title"`
		Description *string            `json:"description"`
		StartDate   *time.Time         `json:"start_date"`
		EndDate     *time.Time         `json:"end_date"`
		AssignedTo  *[]string          `json:"assigned_to"`
		Status      *models.TaskStatus `json:"status"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), c.Param("id"), services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		AssignedTo:  req.AssignedTo,
		Status:      req.Status,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, "Task updated successfully", gin.H{"task": dto.ToTaskDTO(*task)})
}

// UpdateStatus lets an assignee move their task to another status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateStatus(c.Request.Context(), identity, c.Param("id"), req.Status)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, "Task status updated successfully", gin.H{"task": dto.ToTaskDTO(*task)})
}

type membershipRequest struct {
	Email string `json:"email" binding:"required"`
}

// AddUser assigns a user to a task by email
func (h *TaskHandler) AddUser(c *gin.Context) {
	var req membershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.taskService.AddUser(c.Request.Context(), c.Param("id"), req.Email)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	message := "User added to task successfully"
	if result.AlreadyAssigned {
		message = "User is already assigned to this task"
	}

	respond(c, http.StatusOK, message, gin.H{
		"already_assigned": result.AlreadyAssigned,
		"task":             dto.ToTaskDTO(*result.Task),
	})
}

// RemoveUser unassigns a user from a task by email
func (h *TaskHandler) RemoveUser(c *gin.Context) {
	var req membershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.RemoveUser(c.Request.Context(), c.Param("id"), req.Email)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, "User removed from task successfully", gin.H{"task": dto.ToTaskDTO(*task)})
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskService.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, "Task deleted successfully", nil)
}

// AttachUploads records asset references on a task
func (h *TaskHandler) AttachUploads(c *gin.Context) {
	type AttachUploadsRequest struct {
		Uploads []string `json:"uploads" binding:"required"`
	}

	var req AttachUploadsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.AttachUploads(c.Request.Context(), c.Param("id"), req.Uploads)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, "Files uploaded successfully", gin.H{"task": dto.ToTaskDTO(*task)})
}

// GenerateTasks drafts task suggestions from text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.GenerateTasks(c.Request.Context(), req.Text)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	respond(c, http.StatusOK, "Tasks generated successfully", gin.H{"tasks": drafts})
}
