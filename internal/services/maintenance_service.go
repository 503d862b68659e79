package services

import (
	"context"

	"github.com/ips-ux/maintenance-manager/internal/constants"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

// MaintenanceService bundles the nightly housekeeping: derived-field
// recalculation, vacancy counter refresh, and activity retention.
type MaintenanceService struct {
	turnService     *TurnService
	unitService     *UnitService
	activityService *ActivityService
}

func NewMaintenanceService(
	turnService *TurnService,
	unitService *UnitService,
	activityService *ActivityService,
) *MaintenanceService {
	return &MaintenanceService{
		turnService:     turnService,
		unitService:     unitService,
		activityService: activityService,
	}
}

// RunDailyMaintenance runs each housekeeping step in sequence. A failing
// step is logged and does not stop the others.
func (s *MaintenanceService) RunDailyMaintenance(ctx context.Context) {
	utils.Logger.Info("Running daily maintenance...")

	n, err := s.turnService.RecalculateAllProgress(ctx)
	if err != nil {
		utils.Logger.WithError(err).Error("daily maintenance: progress recalculation failed")
	} else {
		utils.Logger.Infof("daily maintenance: refreshed %d open turns", n)
	}

	refreshed, err := s.unitService.RefreshVacancyCounters(ctx)
	if err != nil {
		utils.Logger.WithError(err).Error("daily maintenance: vacancy refresh failed")
	} else {
		utils.Logger.Infof("daily maintenance: refreshed %d vacancy counters", refreshed)
	}

	var pruned int64
	for {
		deleted, err := s.activityService.PruneOldActivities(ctx, constants.ActivityRetentionDays)
		if err != nil {
			utils.Logger.WithError(err).Error("daily maintenance: activity pruning failed")
			break
		}
		pruned += deleted
		if deleted < constants.ActivityPruneCap {
			break
		}
	}
	utils.Logger.Infof("daily maintenance: pruned %d old activities", pruned)
}
