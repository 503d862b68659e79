package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/ips-ux/maintenance-manager/internal/models"
)

type CreateEventRequest struct {
	Title       string           `json:"title" validate:"required"`
	Description string           `json:"description"`
	EventType   models.EventType `json:"event_type" validate:"required"`

	StartDateTime time.Time `json:"start_date_time" validate:"required"`
	EndDateTime   time.Time `json:"end_date_time" validate:"required,gtfield=StartDateTime"`

	UnitID     *uuid.UUID `json:"unit_id"`
	UnitNumber string     `json:"unit_number"`
	TurnID     *uuid.UUID `json:"turn_id"`
	VendorID   *uuid.UUID `json:"vendor_id"`

	AssignedTo     *uuid.UUID `json:"assigned_to"`
	AssignedToName string     `json:"assigned_to_name"`
}

type UpdateEventRequest struct {
	Title           *string                 `json:"title"`
	Description     *string                 `json:"description"`
	Status          *models.EventStatusType `json:"status" validate:"omitempty,oneof=Scheduled Completed Cancelled Rescheduled"`
	StartDateTime   *time.Time              `json:"start_date_time"`
	EndDateTime     *time.Time              `json:"end_date_time"`
	AssignedTo      *uuid.UUID              `json:"assigned_to"`
	AssignedToName  *string                 `json:"assigned_to_name"`
	CancelledReason *string                 `json:"cancelled_reason"`
}

type ConflictCheckRequest struct {
	AssignedTo     uuid.UUID  `json:"assigned_to" validate:"required"`
	StartDateTime  time.Time  `json:"start_date_time" validate:"required"`
	EndDateTime    time.Time  `json:"end_date_time" validate:"required,gtfield=StartDateTime"`
	ExcludeEventID *uuid.UUID `json:"exclude_event_id"`
}

type ConflictCheckResult struct {
	HasConflict       bool                    `json:"has_conflict"`
	ConflictingEvents []*models.CalendarEvent `json:"conflicting_events"`
}

type EventStatistics struct {
	TotalEvents int            `json:"total_events"`
	ByStatus    map[string]int `json:"by_status"`
	ByEventType map[string]int `json:"by_event_type"`
}
