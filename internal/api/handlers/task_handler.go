package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShakirYasin/exact-sol-test/internal/api/dto"
	"github.com/ShakirYasin/exact-sol-test/internal/api/middleware"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/task"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/user"
	"github.com/ShakirYasin/exact-sol-test/pkg/logger"
)

// TaskHandler handles HTTP requests for task operations
type TaskHandler struct {
	service task.Service
	logger  *logger.Logger
}

// NewTaskHandler creates a new TaskHandler instance
func NewTaskHandler(service task.Service, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{service: service, logger: logger}
}

// taskErrorStatus maps task domain errors to HTTP status codes
func taskErrorStatus(err error) int {
	switch {
	case errors.Is(err, task.ErrTaskNotFound), errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, task.ErrInvalidStatus), errors.Is(err, task.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, task.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// CreateTask creates a new task owned by the authenticated user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	created, err := h.service.Create(c.Request.Context(), actorID, task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		status := taskErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Task creation failed", zap.Error(err))
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": TaskToResponse(created)})
}

// ListTasks returns all tasks, optionally filtered by status
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var status *string
	if s := c.Query("status"); s != "" {
		status = &s
	}

	tasks, err := h.service.List(c.Request.Context(), status)
	if err != nil {
		if errors.Is(err, task.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to list tasks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TasksToResponse(tasks)})
}

// GetTask returns a single task by id
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(taskErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(t)})
}

// UpdateTask applies a partial update to a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), actorID, id, task.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		status := taskErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Task update failed", zap.Error(err))
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(updated)})
}

// DeleteTask removes a task permanently
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), actorID, id); err != nil {
		status := taskErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Task deletion failed", zap.Error(err))
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

// AssignTask reassigns a task to another user. Admin only.
func (h *TaskHandler) AssignTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	var req dto.AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	assigned, err := h.service.Assign(c.Request.Context(), actorID, id, req.AssigneeID)
	if err != nil {
		status := taskErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Task assignment failed", zap.Error(err))
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(assigned)})
}
