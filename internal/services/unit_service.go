package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ips-ux/maintenance-manager/internal/constants"
	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

type UnitService struct {
	unitRepo repositories.UnitRepository
	activity *ActivityService
}

func NewUnitService(unitRepo repositories.UnitRepository, activity *ActivityService) *UnitService {
	return &UnitService{unitRepo: unitRepo, activity: activity}
}

func (s *UnitService) CreateUnit(ctx context.Context, req dtos.CreateUnitRequest, actor dtos.Actor) (*models.Unit, error) {
	existing, err := s.unitRepo.GetByUnitNumber(ctx, req.UnitNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.ErrUnitNumberTaken
	}

	unit := &models.Unit{
		ID:         uuid.New(),
		UnitNumber: req.UnitNumber,
		Bedrooms:   req.Bedrooms,
		Bathrooms:  req.Bathrooms,
		SquareFeet: req.SquareFeet,
		Building:   req.Building,
		Floor:      req.Floor,
		Status:     models.UnitStatusOccupied,
		Notes:      req.Notes,
	}
	if err := s.unitRepo.Create(ctx, unit); err != nil {
		return nil, err
	}
	return s.unitRepo.GetByID(ctx, unit.ID)
}

// CreateBulkUnits registers a batch of units in one call. Items that
// fail validation are reported per index; the rest still go through.
func (s *UnitService) CreateBulkUnits(ctx context.Context, req dtos.BulkCreateUnitsRequest, actor dtos.Actor) (*dtos.BulkCreateResult, error) {
	result := &dtos.BulkCreateResult{Errors: []dtos.BulkItemError{}}
	seen := map[string]bool{}
	valid := make([]models.Unit, 0, len(req.Units))

	for i, in := range req.Units {
		if seen[in.UnitNumber] {
			result.Errors = append(result.Errors, dtos.BulkItemError{
				Index: i, Identifier: in.UnitNumber, Error: utils.ErrUnitNumberTaken.Error(),
			})
			continue
		}
		existing, err := s.unitRepo.GetByUnitNumber(ctx, in.UnitNumber)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			result.Errors = append(result.Errors, dtos.BulkItemError{
				Index: i, Identifier: in.UnitNumber, Error: utils.ErrUnitNumberTaken.Error(),
			})
			continue
		}
		seen[in.UnitNumber] = true
		valid = append(valid, models.Unit{
			ID:         uuid.New(),
			UnitNumber: in.UnitNumber,
			Bedrooms:   in.Bedrooms,
			Bathrooms:  in.Bathrooms,
			SquareFeet: in.SquareFeet,
			Building:   in.Building,
			Floor:      in.Floor,
			Status:     models.UnitStatusOccupied,
			Notes:      in.Notes,
		})
	}

	if len(valid) > 0 {
		if err := s.unitRepo.CreateMany(ctx, valid); err != nil {
			return nil, err
		}
	}
	result.Created = len(valid)
	return result, nil
}

// UpdateUnit merges the request onto the unit. When the merge touches
// vacancy fields, days_vacant is recomputed from the merged result;
// caller-supplied values for it are never trusted.
func (s *UnitService) UpdateUnit(ctx context.Context, unitID uuid.UUID, req dtos.UpdateUnitRequest, actor dtos.Actor) (*models.Unit, error) {
	var unitNumber string
	err := s.unitRepo.UpdateWithRetry(ctx, unitID, func(u *models.Unit) error {
		if req.UnitNumber != nil {
			u.UnitNumber = *req.UnitNumber
		}
		if req.Bedrooms != nil {
			u.Bedrooms = *req.Bedrooms
		}
		if req.Bathrooms != nil {
			u.Bathrooms = *req.Bathrooms
		}
		if req.SquareFeet != nil {
			u.SquareFeet = *req.SquareFeet
		}
		if req.Building != nil {
			u.Building = *req.Building
		}
		if req.Floor != nil {
			u.Floor = *req.Floor
		}
		if req.Notes != nil {
			u.Notes = *req.Notes
		}

		touchedVacancy := req.IsVacant != nil || req.VacantSince != nil
		if req.IsVacant != nil {
			u.IsVacant = *req.IsVacant
			if !u.IsVacant {
				u.VacantSince = nil
			}
		}
		if req.VacantSince != nil {
			u.VacantSince = req.VacantSince
		}
		if touchedVacancy {
			u.DaysVacant = daysVacant(u, time.Now().UTC())
		}

		unitNumber = u.UnitNumber
		return nil
	})
	if err != nil {
		return nil, notFoundIfNoRows(err)
	}

	s.activity.Log(ctx, actor, models.ActionUnitUpdated,
		fmt.Sprintf("Updated unit %s", unitNumber),
		"unit", unitID, unitNumber, nil)

	return s.unitRepo.GetByID(ctx, unitID)
}

// MarkVacant flips the unit to vacant as a single field-set write.
func (s *UnitService) MarkVacant(ctx context.Context, unitID uuid.UUID, req dtos.MarkVacantRequest, actor dtos.Actor) (*models.Unit, error) {
	since := time.Now().UTC()
	if req.VacantSince != nil {
		since = req.VacantSince.UTC()
	}
	if err := s.unitRepo.MarkVacant(ctx, unitID, since); err != nil {
		return nil, notFoundIfNoRows(err)
	}

	unit, err := s.unitRepo.GetByID(ctx, unitID)
	if err != nil || unit == nil {
		return unit, err
	}
	s.activity.Log(ctx, actor, models.ActionUnitUpdated,
		fmt.Sprintf("Marked unit %s vacant", unit.UnitNumber),
		"unit", unit.ID, unit.UnitNumber, nil)
	return unit, nil
}

func (s *UnitService) MarkOccupied(ctx context.Context, unitID uuid.UUID, actor dtos.Actor) (*models.Unit, error) {
	if err := s.unitRepo.MarkOccupied(ctx, unitID); err != nil {
		return nil, notFoundIfNoRows(err)
	}

	unit, err := s.unitRepo.GetByID(ctx, unitID)
	if err != nil || unit == nil {
		return unit, err
	}
	s.activity.Log(ctx, actor, models.ActionUnitUpdated,
		fmt.Sprintf("Marked unit %s occupied", unit.UnitNumber),
		"unit", unit.ID, unit.UnitNumber, nil)
	return unit, nil
}

/* ─────────────── reads ─────────────── */

// GetUnit returns the unit with days_vacant recomputed against the
// current clock. The stored column only refreshes on writes and the
// nightly sweep.
func (s *UnitService) GetUnit(ctx context.Context, unitID uuid.UUID) (*models.Unit, error) {
	unit, err := s.unitRepo.GetByID(ctx, unitID)
	if err != nil || unit == nil {
		return unit, err
	}
	unit.DaysVacant = daysVacant(unit, time.Now().UTC())
	return unit, nil
}

func (s *UnitService) GetUnitByNumber(ctx context.Context, unitNumber string) (*models.Unit, error) {
	unit, err := s.unitRepo.GetByUnitNumber(ctx, unitNumber)
	if err != nil || unit == nil {
		return unit, err
	}
	unit.DaysVacant = daysVacant(unit, time.Now().UTC())
	return unit, nil
}

// DeleteUnit is the administrative escape hatch. The schema's foreign
// key rejects deleting a unit that still has turn history.
func (s *UnitService) DeleteUnit(ctx context.Context, unitID uuid.UUID) error {
	return s.unitRepo.Delete(ctx, unitID)
}

func (s *UnitService) ListUnits(ctx context.Context, q repositories.UnitQuery) ([]*models.Unit, error) {
	if q.Limit <= 0 {
		q.Limit = constants.DefaultListLimit
	}
	if q.Limit > constants.MaxListLimit {
		q.Limit = constants.MaxListLimit
	}
	units, err := s.unitRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for _, u := range units {
		u.DaysVacant = daysVacant(u, now)
	}
	return units, nil
}

// GetStatistics rolls up inventory counts for the dashboard. Average
// vacancy is one decimal across currently vacant units.
func (s *UnitService) GetStatistics(ctx context.Context) (*dtos.UnitStatistics, error) {
	units, err := s.unitRepo.List(ctx, repositories.UnitQuery{Limit: constants.StatsScanLimit})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stats := &dtos.UnitStatistics{
		TotalUnits: len(units),
		ByStatus:   map[string]int{},
	}
	var vacantDaySum int
	for _, u := range units {
		stats.ByStatus[string(u.Status)]++
		if u.IsVacant {
			stats.VacantUnits++
			vacantDaySum += daysVacant(u, now)
		}
	}
	if stats.VacantUnits > 0 {
		avg := float64(vacantDaySum) / float64(stats.VacantUnits)
		stats.AvgDaysVacant = math.Round(avg*10) / 10
	}
	return stats, nil
}

// RefreshVacancyCounters rewrites the stored days_vacant of every vacant
// unit. Run from the nightly sweep.
func (s *UnitService) RefreshVacancyCounters(ctx context.Context) (int, error) {
	units, err := s.unitRepo.List(ctx, repositories.UnitQuery{
		IsVacant: utils.Ptr(true),
		Limit:    constants.StatsScanLimit,
	})
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	refreshed := 0
	for _, u := range units {
		want := daysVacant(u, now)
		if want == u.DaysVacant {
			continue
		}
		err := s.unitRepo.UpdateWithRetry(ctx, u.ID, func(cur *models.Unit) error {
			cur.DaysVacant = daysVacant(cur, now)
			return nil
		})
		if err != nil {
			utils.Logger.WithError(err).Warnf("failed to refresh vacancy counter for unit %s", u.UnitNumber)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}
