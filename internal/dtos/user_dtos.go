package dtos

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/ips-ux/maintenance-manager/internal/models"
)

// CreateUserRequest registers a staff profile. The ID comes from the
// identity provider, not from us.
type CreateUserRequest struct {
	ID          uuid.UUID       `json:"id" validate:"required"`
	Email       string          `json:"email" validate:"required,email"`
	DisplayName string          `json:"display_name" validate:"required"`
	Phone       string          `json:"phone"`
	Role        models.RoleType `json:"role" validate:"required"`
	Permissions []string        `json:"permissions"`
}

type UpdateUserRequest struct {
	Email       *string  `json:"email" validate:"omitempty,email"`
	DisplayName *string  `json:"display_name"`
	Phone       *string  `json:"phone"`
	Active      *bool    `json:"active"`
	Permissions []string `json:"permissions"`
}

type SetUserRoleRequest struct {
	Role models.RoleType `json:"role" validate:"required"`
}

// UpdateNotificationSettingsRequest replaces the user's notification
// preferences wholesale; the payload shape is owned by the frontend.
type UpdateNotificationSettingsRequest struct {
	Settings json.RawMessage `json:"settings" validate:"required"`
}

type UserStatistics struct {
	TotalUsers          int            `json:"total_users"`
	ActiveUsers         int            `json:"active_users"`
	ByRole              map[string]int `json:"by_role"`
	TotalTurnsCompleted int            `json:"total_turns_completed"`
}
