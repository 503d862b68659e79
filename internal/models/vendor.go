package models

import (
	"time"

	"github.com/google/uuid"
)

type Vendor struct {
	ID          uuid.UUID `json:"id"`
	VendorName  string    `json:"vendor_name"`
	Category    string    `json:"category"`
	ContactName string    `json:"contact_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`

	Active          bool `json:"active"`
	PreferredVendor bool `json:"preferred_vendor"`

	// 1-5, one decimal. Zero means unrated.
	Rating             float64    `json:"rating,omitempty"`
	TotalJobsCompleted int        `json:"total_jobs_completed"`
	LastServiceDate    *time.Time `json:"last_service_date,omitempty"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
