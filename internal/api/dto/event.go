package dto

import (
	"time"

	"github.com/google/uuid"
)

// EventResponse represents an audit log entry in API responses
type EventResponse struct {
	ID          uuid.UUID              `json:"id"`
	Type        string                 `json:"type"`
	UserID      uuid.UUID              `json:"userId"`
	Metadata    map[string]interface{} `json:"metadata"`
	Description string                 `json:"description"`
	CreatedAt   time.Time              `json:"createdAt"`
}
