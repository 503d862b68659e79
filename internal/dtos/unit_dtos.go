package dtos

import "time"

type CreateUnitRequest struct {
	UnitNumber string  `json:"unit_number" validate:"required"`
	Bedrooms   int     `json:"bedrooms" validate:"gte=0"`
	Bathrooms  float64 `json:"bathrooms" validate:"gte=0"`
	SquareFeet int     `json:"square_feet" validate:"gte=0"`
	Building   string  `json:"building"`
	Floor      int     `json:"floor"`
	Notes      string  `json:"notes"`
}

// UpdateUnitRequest merges onto a unit. Vacancy math is recomputed from
// the merged result; days_vacant itself is not accepted from callers.
type UpdateUnitRequest struct {
	UnitNumber  *string    `json:"unit_number"`
	Bedrooms    *int       `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms   *float64   `json:"bathrooms" validate:"omitempty,gte=0"`
	SquareFeet  *int       `json:"square_feet" validate:"omitempty,gte=0"`
	Building    *string    `json:"building"`
	Floor       *int       `json:"floor"`
	Notes       *string    `json:"notes"`
	IsVacant    *bool      `json:"is_vacant"`
	VacantSince *time.Time `json:"vacant_since"`
}

type BulkCreateUnitsRequest struct {
	Units []CreateUnitRequest `json:"units" validate:"required,min=1,dive"`
}

type MarkVacantRequest struct {
	VacantSince *time.Time `json:"vacant_since"`
}

type UnitStatistics struct {
	TotalUnits    int            `json:"total_units"`
	VacantUnits   int            `json:"vacant_units"`
	ByStatus      map[string]int `json:"by_status"`
	AvgDaysVacant float64        `json:"avg_days_vacant"`
}
