package handlers

import (
	"github.com/ShakirYasin/exact-sol-test/internal/api/dto"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/events"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/task"
	"github.com/ShakirYasin/exact-sol-test/internal/domain/user"
)

// UserToResponse converts a user model to its API representation
func UserToResponse(u *user.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func userToSummary(u *user.User) *dto.UserSummary {
	if u == nil {
		return nil
	}
	return &dto.UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// TaskToResponse converts a task model to its API representation
func TaskToResponse(t *task.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		AssignedTo:  userToSummary(t.AssignedTo),
		CreatedBy:   userToSummary(t.CreatedBy),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TasksToResponse converts a slice of task models
func TasksToResponse(tasks []task.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, TaskToResponse(&tasks[i]))
	}
	return out
}

// EventToResponse converts an event log entry to its API representation
func EventToResponse(e *events.EventLog) dto.EventResponse {
	return dto.EventResponse{
		ID:          e.ID,
		Type:        string(e.Type),
		UserID:      e.UserID,
		Metadata:    e.Metadata,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}
