package events

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Type enumerates the recorded event kinds.
type Type string

const (
	TaskCreated   Type = "task_created"
	TaskUpdated   Type = "task_updated"
	TaskDeleted   Type = "task_deleted"
	TaskAssigned  Type = "task_assigned"
	UserLoggedIn  Type = "user_logged_in"
	UserLoggedOut Type = "user_logged_out"
)

func (t Type) IsValid() bool {
	switch t {
	case TaskCreated, TaskUpdated, TaskDeleted, TaskAssigned, UserLoggedIn, UserLoggedOut:
		return true
	}
	return false
}

// Metadata stores a free-form snapshot of the affected entity in a JSONB column.
type Metadata map[string]interface{}

func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(map[string]interface{})
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	result := make(map[string]interface{})
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}

	*m = result
	return nil
}

func (m Metadata) Value() (driver.Value, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// EventLog is an append-only audit record. The application never updates or
// deletes rows in this table.
type EventLog struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Type        Type      `json:"type" gorm:"not null;index:idx_event_type"`
	UserID      uuid.UUID `json:"userId" gorm:"type:uuid;not null;index:idx_event_user"`
	Metadata    Metadata  `json:"metadata" gorm:"type:jsonb"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt" gorm:"not null;index:idx_event_created"`
}

// TableName specifies the table name for the EventLog model
func (EventLog) TableName() string {
	return "event_logs"
}

// BeforeCreate is called before appending a new event record
func (e *EventLog) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if !e.Type.IsValid() {
		return fmt.Errorf("invalid event type: %s", e.Type)
	}
	return nil
}
