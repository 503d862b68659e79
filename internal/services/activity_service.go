package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ips-ux/maintenance-manager/internal/constants"
	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

type ActivityService struct {
	repo repositories.ActivityRepository
}

func NewActivityService(repo repositories.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// Log appends one audit record. Failures are logged and swallowed so a
// dropped audit line never fails the caller's primary write.
func (s *ActivityService) Log(
	ctx context.Context,
	actor dtos.Actor,
	action models.ActionType,
	actionText string,
	entityType string,
	entityID uuid.UUID,
	entityName string,
	metadata any,
) {
	a := &models.Activity{
		ID:         uuid.New(),
		UserID:     actor.UserID,
		UserName:   actor.Name,
		UserRole:   actor.Role,
		Action:     action,
		ActionText: actionText,
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
		Timestamp:  time.Now().UTC(),
	}
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			utils.Logger.WithError(err).Warn("activity metadata marshal failed, dropping metadata")
		} else {
			raw := json.RawMessage(b)
			a.Metadata = &raw
		}
	}

	if err := s.repo.Create(ctx, a); err != nil {
		utils.Logger.WithError(err).Warnf("failed to log activity %s for %s %s", action, entityType, entityID)
	}
}

func (s *ActivityService) GetActivity(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	return s.repo.GetByID(ctx, id)
}

// DeleteActivity removes one record; the admin correction path, not
// part of normal retention.
func (s *ActivityService) DeleteActivity(ctx context.Context, id uuid.UUID) error {
	return notFoundIfNoRows(s.repo.Delete(ctx, id))
}

func (s *ActivityService) GetActivities(ctx context.Context, q repositories.ActivityQuery) ([]*models.Activity, error) {
	if q.Limit <= 0 {
		q.Limit = constants.DefaultListLimit
	}
	if q.Limit > constants.MaxListLimit {
		q.Limit = constants.MaxListLimit
	}
	return s.repo.List(ctx, q)
}

// GetStatistics rolls up recent activity counts by action type, entity
// type, and user, plus the ten most active users. Both window bounds
// are optional.
func (s *ActivityService) GetStatistics(ctx context.Context, since, until *time.Time) (*dtos.ActivityStatistics, error) {
	recs, err := s.repo.List(ctx, repositories.ActivityQuery{
		Since: since,
		Until: until,
		Limit: constants.StatsScanLimit,
	})
	if err != nil {
		return nil, err
	}

	stats := &dtos.ActivityStatistics{
		TotalActivities: len(recs),
		ByActionType:    map[string]int{},
		ByEntityType:    map[string]int{},
		ByUser:          map[string]int{},
	}
	for _, a := range recs {
		stats.ByActionType[string(a.Action)]++
		if a.EntityType != "" {
			stats.ByEntityType[a.EntityType]++
		}
		if a.UserName != "" {
			stats.ByUser[a.UserName]++
		}
	}

	top := make([]dtos.UserCount, 0, len(stats.ByUser))
	for name, n := range stats.ByUser {
		top = append(top, dtos.UserCount{UserName: name, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].UserName < top[j].UserName
	})
	if len(top) > 10 {
		top = top[:10]
	}
	stats.TopUsers = top

	return stats, nil
}

// PruneOldActivities removes one batch of records older than the
// retention window and reports how many went away. Callers loop until
// the count drops below the batch cap.
func (s *ActivityService) PruneOldActivities(ctx context.Context, daysToKeep int) (int64, error) {
	if daysToKeep <= 0 {
		daysToKeep = constants.ActivityRetentionDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -daysToKeep)
	return s.repo.DeleteOlderThan(ctx, cutoff, constants.ActivityPruneCap)
}
