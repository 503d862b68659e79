package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/ips-ux/maintenance-manager/internal/models"
)

// TaskInput seeds one checklist item on turn creation. Completion fields
// are always zeroed server-side.
type TaskInput struct {
	TaskName string `json:"task_name" validate:"required"`
	Category string `json:"category"`
	Required bool   `json:"required"`
	Notes    string `json:"notes"`
}

type CreateTurnRequest struct {
	UnitID               uuid.UUID  `json:"unit_id" validate:"required"`
	TargetCompletionDate time.Time  `json:"target_completion_date" validate:"required"`
	StartDate            *time.Time `json:"start_date"`

	AssignedTechnicianID   uuid.UUID `json:"assigned_technician_id" validate:"required"`
	AssignedTechnicianName string    `json:"assigned_technician_name" validate:"required"`

	Priority models.TurnPriorityType `json:"priority" validate:"omitempty,oneof=Low Normal High Urgent"`
	Notes    string                  `json:"notes"`

	// Empty means the standard checklist template.
	Checklist []TaskInput `json:"checklist"`
}

// UpdateTaskRequest merges onto one checklist task. Nil fields are left
// untouched.
type UpdateTaskRequest struct {
	Completed *bool    `json:"completed"`
	Notes     *string  `json:"notes"`
	Photos    []string `json:"photos"`
}

type BlockTurnRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type UpdateTurnRequest struct {
	TargetCompletionDate   *time.Time               `json:"target_completion_date"`
	AssignedTechnicianID   *uuid.UUID               `json:"assigned_technician_id"`
	AssignedTechnicianName *string                  `json:"assigned_technician_name"`
	Priority               *models.TurnPriorityType `json:"priority" validate:"omitempty,oneof=Low Normal High Urgent"`
	Notes                  *string                  `json:"notes"`
}
