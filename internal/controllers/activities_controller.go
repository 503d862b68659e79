package controllers

import (
	"net/http"
	"time"

	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/services"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

type ActivitiesController struct {
	activityService *services.ActivityService
}

func NewActivitiesController(as *services.ActivityService) *ActivitiesController {
	return &ActivitiesController{activityService: as}
}

// GET /api/v1/activities
func (c *ActivitiesController) ListActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	q := repositories.ActivityQuery{
		EntityType: r.URL.Query().Get("entity_type"),
		EntityID:   queryUUID(r, "entity_id"),
		UserID:     queryUUID(r, "user_id"),
		Action:     models.ActionType(r.URL.Query().Get("action")),
		Limit:      queryInt(r, "limit"),
	}
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "since must be RFC3339", nil,
			)
			return
		}
		q.Since = &since
	}
	if raw := r.URL.Query().Get("until"); raw != "" {
		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "until must be RFC3339", nil,
			)
			return
		}
		q.Until = &until
	}

	activities, err := c.activityService.GetActivities(r.Context(), q)
	if err != nil {
		respondServiceError(w, err, "Failed to list activities")
		return
	}
	if activities == nil {
		activities = []*models.Activity{}
	}
	utils.RespondWithJSON(w, http.StatusOK, activities)
}

// GET /api/v1/activities/{id}
func (c *ActivitiesController) GetActivityHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	activity, err := c.activityService.GetActivity(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch activity")
		return
	}
	if activity == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Activity not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, activity)
}

// DELETE /api/v1/activities/{id}
func (c *ActivitiesController) DeleteActivityHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := c.activityService.DeleteActivity(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete activity")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// GET /api/v1/activities/statistics
func (c *ActivitiesController) ActivityStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	var since, until *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "since must be RFC3339", nil,
			)
			return
		}
		since = &t
	}
	if raw := r.URL.Query().Get("until"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondErrorWithCode(
				w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "until must be RFC3339", nil,
			)
			return
		}
		until = &t
	}

	stats, err := c.activityService.GetStatistics(r.Context(), since, until)
	if err != nil {
		respondServiceError(w, err, "Failed to compute activity statistics")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}
