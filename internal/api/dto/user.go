package dto

import (
	"time"

	"github.com/google/uuid"
)

// UserResponse represents a user in API responses. The password hash never
// appears here.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummary is the trimmed user shape embedded in task responses
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

// CreateAdminRequest represents the request body for creating an admin user
type CreateAdminRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UpdateProfileRequest represents the request body for profile updates.
// Password changes require a matching confirmation.
type UpdateProfileRequest struct {
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	Password        *string `json:"password,omitempty"`
	ConfirmPassword *string `json:"confirmPassword,omitempty"`
}
