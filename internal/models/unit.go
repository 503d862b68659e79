package models

import (
	"time"

	"github.com/google/uuid"
)

type UnitStatusType string

const (
	UnitStatusReady      UnitStatusType = "Ready"
	UnitStatusInProgress UnitStatusType = "In Progress"
	UnitStatusBlocked    UnitStatusType = "Blocked"
	UnitStatusOccupied   UnitStatusType = "Occupied"
)

// Unit is one rentable space in the inventory. CurrentTurnID is non-nil
// exactly while an open (In Progress or Blocked) turn references the unit.
type Unit struct {
	Versioned

	ID         uuid.UUID      `json:"id"`
	UnitNumber string         `json:"unit_number"`
	Bedrooms   int            `json:"bedrooms"`
	Bathrooms  float64        `json:"bathrooms"`
	SquareFeet int            `json:"square_feet"`
	Building   string         `json:"building"`
	Floor      int            `json:"floor"`
	Status     UnitStatusType `json:"status"`

	IsVacant    bool       `json:"is_vacant"`
	VacantSince *time.Time `json:"vacant_since,omitempty"`
	DaysVacant  int        `json:"days_vacant"`

	CurrentTurnID         *uuid.UUID `json:"current_turn_id,omitempty"`
	LastTurnCompletedDate *time.Time `json:"last_turn_completed_date,omitempty"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *Unit) GetID() string {
	return u.ID.String()
}
