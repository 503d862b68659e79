package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ips-ux/maintenance-manager/internal/constants"
	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

type VendorService struct {
	vendorRepo repositories.VendorRepository
}

func NewVendorService(vendorRepo repositories.VendorRepository) *VendorService {
	return &VendorService{vendorRepo: vendorRepo}
}

func (s *VendorService) CreateVendor(ctx context.Context, req dtos.CreateVendorRequest) (*models.Vendor, error) {
	vendor := &models.Vendor{
		ID:          uuid.New(),
		VendorName:  req.VendorName,
		Category:    req.Category,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
		Active:      true,
		Notes:       req.Notes,
	}
	if err := s.vendorRepo.Create(ctx, vendor); err != nil {
		return nil, err
	}
	return s.vendorRepo.GetByID(ctx, vendor.ID)
}

// CreateBulkVendors registers a batch of vendors; duplicate names
// within the batch are rejected per item, the rest go through.
func (s *VendorService) CreateBulkVendors(ctx context.Context, req dtos.BulkCreateVendorsRequest) (*dtos.BulkCreateResult, error) {
	result := &dtos.BulkCreateResult{Errors: []dtos.BulkItemError{}}
	seen := map[string]bool{}

	for i, in := range req.Vendors {
		if seen[in.VendorName] {
			result.Errors = append(result.Errors, dtos.BulkItemError{
				Index: i, Identifier: in.VendorName, Error: "duplicate vendor name in batch",
			})
			continue
		}
		seen[in.VendorName] = true
		vendor := &models.Vendor{
			ID:          uuid.New(),
			VendorName:  in.VendorName,
			Category:    in.Category,
			ContactName: in.ContactName,
			Phone:       in.Phone,
			Email:       in.Email,
			Active:      true,
			Notes:       in.Notes,
		}
		if err := s.vendorRepo.Create(ctx, vendor); err != nil {
			return nil, err
		}
		result.Created++
	}
	return result, nil
}

func (s *VendorService) UpdateVendor(ctx context.Context, vendorID uuid.UUID, req dtos.UpdateVendorRequest) (*models.Vendor, error) {
	vendor, err := s.vendorRepo.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, utils.ErrNotFound
	}

	if req.VendorName != nil {
		vendor.VendorName = *req.VendorName
	}
	if req.Category != nil {
		vendor.Category = *req.Category
	}
	if req.ContactName != nil {
		vendor.ContactName = *req.ContactName
	}
	if req.Phone != nil {
		vendor.Phone = *req.Phone
	}
	if req.Email != nil {
		vendor.Email = *req.Email
	}
	if req.Active != nil {
		vendor.Active = *req.Active
	}
	if req.PreferredVendor != nil {
		vendor.PreferredVendor = *req.PreferredVendor
	}
	if req.Notes != nil {
		vendor.Notes = *req.Notes
	}

	if err := s.vendorRepo.Update(ctx, vendor); err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return s.vendorRepo.GetByID(ctx, vendorID)
}

// SetRating accepts 1 through 5 and stores one decimal of precision.
func (s *VendorService) SetRating(ctx context.Context, vendorID uuid.UUID, rating float64) (*models.Vendor, error) {
	if rating < 1 || rating > 5 {
		return nil, utils.ErrInvalidRating
	}
	rounded := math.Round(rating*10) / 10
	if err := s.vendorRepo.SetRating(ctx, vendorID, rounded); err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return s.vendorRepo.GetByID(ctx, vendorID)
}

// RecordJobCompletion bumps the vendor's completed-job counter and
// stamps the last service date.
func (s *VendorService) RecordJobCompletion(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	if err := s.vendorRepo.RecordJobCompletion(ctx, vendorID, time.Now().UTC()); err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return s.vendorRepo.GetByID(ctx, vendorID)
}

func (s *VendorService) DeleteVendor(ctx context.Context, vendorID uuid.UUID) error {
	return s.vendorRepo.Delete(ctx, vendorID)
}

func (s *VendorService) GetVendor(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	return s.vendorRepo.GetByID(ctx, vendorID)
}

// GetStatistics rolls up the vendor directory for the dashboard.
func (s *VendorService) GetStatistics(ctx context.Context) (*dtos.VendorStatistics, error) {
	vendors, err := s.vendorRepo.List(ctx, repositories.VendorQuery{Limit: constants.StatsScanLimit})
	if err != nil {
		return nil, err
	}

	stats := &dtos.VendorStatistics{
		TotalVendors: len(vendors),
		ByCategory:   map[string]int{},
	}
	var ratingSum float64
	var rated int
	for _, v := range vendors {
		if v.Active {
			stats.ActiveVendors++
		}
		if v.PreferredVendor {
			stats.PreferredVendors++
		}
		if v.Category != "" {
			stats.ByCategory[v.Category]++
		}
		if v.Rating > 0 {
			ratingSum += v.Rating
			rated++
		}
		stats.TotalJobsCompleted += v.TotalJobsCompleted
	}
	if rated > 0 {
		stats.AverageRating = math.Round(ratingSum/float64(rated)*10) / 10
	}
	return stats, nil
}

func (s *VendorService) ListVendors(ctx context.Context, q repositories.VendorQuery) ([]*models.Vendor, error) {
	if q.Limit <= 0 {
		q.Limit = constants.DefaultListLimit
	}
	if q.Limit > constants.MaxListLimit {
		q.Limit = constants.MaxListLimit
	}
	return s.vendorRepo.List(ctx, q)
}
