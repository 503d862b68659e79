package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/services"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

// SeedAllTestData populates a fresh database with a small demo
// inventory: staff, vendors, units, and one in-flight turn. A database
// that already has units is left untouched.
func SeedAllTestData(
	ctx context.Context,
	unitRepo repositories.UnitRepository,
	vendorRepo repositories.VendorRepository,
	userRepo repositories.UserRepository,
	turnService *services.TurnService,
) error {
	existing, err := unitRepo.List(ctx, repositories.UnitQuery{Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		utils.Logger.Info("Seed skipped: units already present")
		return nil
	}

	techID := uuid.New()
	staff := []*models.User{
		{
			ID:          uuid.New(),
			Email:       "admin@example.com",
			DisplayName: "Dana Admin",
			Role:        models.RoleAdmin,
			Active:      true,
		},
		{
			ID:          techID,
			Email:       "marcus@example.com",
			DisplayName: "Marcus Reed",
			Phone:       "+15005550101",
			Role:        models.RoleTechnician,
			Active:      true,
			Permissions: []string{"turns.write", "units.write"},
		},
		{
			ID:          uuid.New(),
			Email:       "priya@example.com",
			DisplayName: "Priya Shah",
			Role:        models.RoleManager,
			Active:      true,
			Permissions: []string{"turns.write", "units.write", "vendors.write"},
		},
	}
	for _, u := range staff {
		if err := userRepo.Create(ctx, u); err != nil {
			return err
		}
	}

	vendors := []*models.Vendor{
		{ID: uuid.New(), VendorName: "Sparkle Cleaning Co", Category: "Cleaning", Phone: "+15005550201", Active: true, PreferredVendor: true},
		{ID: uuid.New(), VendorName: "Apex HVAC Services", Category: "HVAC", Phone: "+15005550202", Active: true},
		{ID: uuid.New(), VendorName: "BrightCoat Painting", Category: "Painting", Phone: "+15005550203", Active: true},
	}
	for _, v := range vendors {
		if err := vendorRepo.Create(ctx, v); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	vacantSince := now.AddDate(0, 0, -2)
	units := []models.Unit{
		{ID: uuid.New(), UnitNumber: "101", Bedrooms: 1, Bathrooms: 1, SquareFeet: 640, Building: "A", Floor: 1, Status: models.UnitStatusOccupied},
		{ID: uuid.New(), UnitNumber: "102", Bedrooms: 2, Bathrooms: 1, SquareFeet: 820, Building: "A", Floor: 1, Status: models.UnitStatusOccupied},
		{ID: uuid.New(), UnitNumber: "204", Bedrooms: 2, Bathrooms: 2, SquareFeet: 910, Building: "A", Floor: 2, Status: models.UnitStatusReady, IsVacant: true, VacantSince: &vacantSince, DaysVacant: 2},
		{ID: uuid.New(), UnitNumber: "205", Bedrooms: 1, Bathrooms: 1, SquareFeet: 650, Building: "A", Floor: 2, Status: models.UnitStatusReady, IsVacant: true, VacantSince: &vacantSince, DaysVacant: 2},
		{ID: uuid.New(), UnitNumber: "301", Bedrooms: 3, Bathrooms: 2, SquareFeet: 1150, Building: "B", Floor: 3, Status: models.UnitStatusOccupied},
		{ID: uuid.New(), UnitNumber: "302", Bedrooms: 2, Bathrooms: 2, SquareFeet: 930, Building: "B", Floor: 3, Status: models.UnitStatusOccupied},
	}
	if err := unitRepo.CreateMany(ctx, units); err != nil {
		return err
	}

	// One in-flight turn on unit 204 with the standard checklist.
	_, err = turnService.CreateTurn(ctx, dtos.CreateTurnRequest{
		UnitID:                 units[2].ID,
		TargetCompletionDate:   now.AddDate(0, 0, 5),
		AssignedTechnicianID:   techID,
		AssignedTechnicianName: "Marcus Reed",
		Priority:               models.TurnPriorityNormal,
	}, dtos.SystemActor())
	return err
}
