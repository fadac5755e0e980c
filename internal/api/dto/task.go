package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      *string    `json:"status,omitempty" binding:"omitempty,oneof=pending in_progress completed"`
	DueDate     time.Time  `json:"dueDate"`
	AssignedTo  *uuid.UUID `json:"assignedTo,omitempty"`
}

// UpdateTaskRequest represents the request body for updating a task. Absent
// fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty" binding:"omitempty,oneof=pending in_progress completed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// AssignTaskRequest represents the request body for assigning a task
type AssignTaskRequest struct {
	AssigneeID uuid.UUID `json:"assigneeId" binding:"required"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	DueDate     time.Time    `json:"dueDate"`
	AssignedTo  *UserSummary `json:"assignedTo,omitempty"`
	CreatedBy   *UserSummary `json:"createdBy,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
