package dtos

type CreateVendorRequest struct {
	VendorName  string `json:"vendor_name" validate:"required"`
	Category    string `json:"category" validate:"required"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email" validate:"omitempty,email"`
	Notes       string `json:"notes"`
}

type UpdateVendorRequest struct {
	VendorName      *string `json:"vendor_name"`
	Category        *string `json:"category"`
	ContactName     *string `json:"contact_name"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Active          *bool   `json:"active"`
	PreferredVendor *bool   `json:"preferred_vendor"`
	Notes           *string `json:"notes"`
}

type BulkCreateVendorsRequest struct {
	Vendors []CreateVendorRequest `json:"vendors" validate:"required,min=1,dive"`
}

type SetVendorRatingRequest struct {
	Rating float64 `json:"rating" validate:"required"`
}

// VendorStatistics is the directory rollup. AverageRating spans rated
// vendors only, one decimal.
type VendorStatistics struct {
	TotalVendors       int            `json:"total_vendors"`
	ActiveVendors      int            `json:"active_vendors"`
	PreferredVendors   int            `json:"preferred_vendors"`
	ByCategory         map[string]int `json:"by_category"`
	AverageRating      float64        `json:"average_rating"`
	TotalJobsCompleted int            `json:"total_jobs_completed"`
}
