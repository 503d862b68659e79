package models

import (
	"time"

	"github.com/google/uuid"
)

type TurnStatusType string

const (
	TurnStatusInProgress TurnStatusType = "In Progress"
	TurnStatusCompleted  TurnStatusType = "Completed"
	TurnStatusBlocked    TurnStatusType = "Blocked"
	TurnStatusCancelled  TurnStatusType = "Cancelled"
)

type TurnPriorityType string

const (
	TurnPriorityLow    TurnPriorityType = "Low"
	TurnPriorityNormal TurnPriorityType = "Normal"
	TurnPriorityHigh   TurnPriorityType = "High"
	TurnPriorityUrgent TurnPriorityType = "Urgent"
)

// Task is one checklist item embedded in a turn. Once Completed flips to
// true, CompletedAt/CompletedBy are stamped and never overwritten by later
// updates to the same task.
type Task struct {
	TaskID          string     `json:"task_id"`
	TaskName        string     `json:"task_name"`
	Category        string     `json:"category"`
	Required        bool       `json:"required"`
	Order           int        `json:"order"`
	Completed       bool       `json:"completed"`
	CompletedBy     *uuid.UUID `json:"completed_by,omitempty"`
	CompletedByName *string    `json:"completed_by_name,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Photos          []string   `json:"photos,omitempty"`
}

// Turn is the workflow of preparing a vacated unit for re-occupancy.
// TotalTasks/CompletedTasks/ProgressPercentage are always derived from
// Checklist; they are never written independently.
type Turn struct {
	Versioned

	ID         uuid.UUID      `json:"id"`
	UnitID     uuid.UUID      `json:"unit_id"`
	UnitNumber string         `json:"unit_number"`
	Status     TurnStatusType `json:"status"`

	StartDate            time.Time  `json:"start_date"`
	TargetCompletionDate time.Time  `json:"target_completion_date"`
	ActualCompletionDate *time.Time `json:"actual_completion_date,omitempty"`

	AssignedTechnicianID   uuid.UUID `json:"assigned_technician_id"`
	AssignedTechnicianName string    `json:"assigned_technician_name"`

	Checklist []Task `json:"checklist"`

	TotalTasks         int     `json:"total_tasks"`
	CompletedTasks     int     `json:"completed_tasks"`
	ProgressPercentage float64 `json:"progress_percentage"`
	DaysInProgress     int     `json:"days_in_progress"`
	DaysOverdue        int     `json:"days_overdue"`

	Priority       TurnPriorityType `json:"priority"`
	BlockageReason *string          `json:"blockage_reason,omitempty"`
	Notes          string           `json:"notes,omitempty"`

	// Stamped by the escalation sweep so the overdue alert fires once.
	OverdueNotifiedAt *time.Time `json:"overdue_notified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Turn) GetID() string {
	return t.ID.String()
}

// IsOpen reports whether the turn still holds its unit (In Progress or
// Blocked). Completed and Cancelled turns are terminal.
func (t *Turn) IsOpen() bool {
	return t.Status == TurnStatusInProgress || t.Status == TurnStatusBlocked
}
