package task

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ShakirYasin/exact-sol-test/internal/domain/user"
)

// Status represents the lifecycle state of a task
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents a task in the system. CreatedByID is set once at creation
// and never reassigned by update or assign operations.
type Task struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	Title        string     `json:"title" gorm:"not null"`
	Description  string     `json:"description"`
	Status       Status     `json:"status" gorm:"not null;default:'pending';index:idx_task_status"`
	DueDate      time.Time  `json:"dueDate"`
	AssignedToID uuid.UUID  `json:"assignedToId" gorm:"type:uuid;index:idx_task_assignee"`
	AssignedTo   *user.User `json:"assignedTo,omitempty" gorm:"foreignKey:AssignedToID"`
	CreatedByID  uuid.UUID  `json:"createdById" gorm:"type:uuid;not null;index:idx_task_creator"`
	CreatedBy    *user.User `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}

// Validate checks if the task data is valid
func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrInvalidInput
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	if t.CreatedByID == uuid.Nil {
		return ErrInvalidInput
	}
	return nil
}

// BeforeCreate is called before creating a new task record
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	return t.Validate()
}

// BeforeUpdate is called before updating a task record
func (t *Task) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	return t.Validate()
}
