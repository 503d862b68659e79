package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type RoleType string

const (
	RoleAdmin      RoleType = "Admin"
	RoleManager    RoleType = "Manager"
	RoleTechnician RoleType = "Technician"
	RoleViewer     RoleType = "Viewer"
)

// ValidRoles is the closed whitelist accepted by role updates.
var ValidRoles = []RoleType{RoleAdmin, RoleTechnician, RoleViewer, RoleManager}

// User is a staff profile. The ID is the identity provider's subject id,
// not generated locally.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone,omitempty"`
	Role        RoleType  `json:"role"`
	Active      bool      `json:"active"`

	Permissions []string `json:"permissions,omitempty"`

	TurnsCompleted    int     `json:"turns_completed"`
	AvgCompletionTime float64 `json:"avg_completion_time"`

	NotificationSettings *json.RawMessage `json:"notification_settings,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
