package models

import (
	"time"

	"github.com/google/uuid"
)

type EventStatusType string

const (
	EventStatusScheduled   EventStatusType = "Scheduled"
	EventStatusCompleted   EventStatusType = "Completed"
	EventStatusCancelled   EventStatusType = "Cancelled"
	EventStatusRescheduled EventStatusType = "Rescheduled"
)

type EventType string

const (
	EventTypeVendorVisit EventType = "Vendor Visit"
	EventTypeInspection  EventType = "Inspection"
	EventTypeMoveIn      EventType = "Move In"
	EventTypeMoveOut     EventType = "Move Out"
	EventTypeMaintenance EventType = "Maintenance"
)

// CalendarEvent is a scheduled block of work. Overlap between two
// Scheduled events for the same assignee is checked on demand, not
// enforced at write time.
type CalendarEvent struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	EventType   EventType       `json:"event_type"`
	Status      EventStatusType `json:"status"`

	StartDateTime time.Time `json:"start_date_time"`
	EndDateTime   time.Time `json:"end_date_time"`

	UnitID     *uuid.UUID `json:"unit_id,omitempty"`
	UnitNumber string     `json:"unit_number,omitempty"`
	TurnID     *uuid.UUID `json:"turn_id,omitempty"`
	VendorID   *uuid.UUID `json:"vendor_id,omitempty"`

	AssignedTo     *uuid.UUID `json:"assigned_to,omitempty"`
	AssignedToName string     `json:"assigned_to_name,omitempty"`

	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CancelledReason *string    `json:"cancelled_reason,omitempty"`

	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
