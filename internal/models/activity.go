package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ActionType string

const (
	ActionTurnCreated     ActionType = "turn.created"
	ActionTurnCompleted   ActionType = "turn.completed"
	ActionTurnBlocked     ActionType = "turn.blocked"
	ActionTurnOverdue     ActionType = "turn.overdue"
	ActionTaskCompleted   ActionType = "task.completed"
	ActionVendorScheduled ActionType = "vendor.scheduled"
	ActionUnitUpdated     ActionType = "unit.updated"
	ActionUserUpdated     ActionType = "user.updated"
	ActionUserLogin       ActionType = "user.login"
)

// Activity is one append-only audit-trail record. Never mutated; rows
// only leave via retention pruning or an admin delete.
type Activity struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
	UserRole RoleType  `json:"user_role"`

	Action     ActionType `json:"action_type"`
	ActionText string     `json:"action"`

	EntityType string    `json:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"`
	EntityName string    `json:"entity_name"`

	Metadata *json.RawMessage `json:"metadata,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}
