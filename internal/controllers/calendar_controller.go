package controllers

import (
	"net/http"
	"time"

	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/services"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

type CalendarController struct {
	calendarService *services.CalendarService
}

func NewCalendarController(cs *services.CalendarService) *CalendarController {
	return &CalendarController{calendarService: cs}
}

// POST /api/v1/calendar/events
func (c *CalendarController) CreateEventHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}
	var req dtos.CreateEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	event, err := c.calendarService.CreateEvent(r.Context(), req, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to create event")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, event)
}

// GET /api/v1/calendar/events
func (c *CalendarController) ListEventsHandler(w http.ResponseWriter, r *http.Request) {
	q := repositories.EventQuery{
		Status:     models.EventStatusType(r.URL.Query().Get("status")),
		EventType:  models.EventType(r.URL.Query().Get("event_type")),
		UnitID:     queryUUID(r, "unit_id"),
		AssignedTo: queryUUID(r, "assigned_to"),
		Limit:      queryInt(r, "limit"),
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err == nil {
			q.From = &t
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err == nil {
			q.To = &t
		}
	}

	events, err := c.calendarService.ListEvents(r.Context(), q)
	if err != nil {
		respondServiceError(w, err, "Failed to list events")
		return
	}
	if events == nil {
		events = []*models.CalendarEvent{}
	}
	utils.RespondWithJSON(w, http.StatusOK, events)
}

// GET /api/v1/calendar/events/upcoming
func (c *CalendarController) UpcomingEventsHandler(w http.ResponseWriter, r *http.Request) {
	events, err := c.calendarService.UpcomingEvents(r.Context(), queryInt(r, "days"))
	if err != nil {
		respondServiceError(w, err, "Failed to list upcoming events")
		return
	}
	if events == nil {
		events = []*models.CalendarEvent{}
	}
	utils.RespondWithJSON(w, http.StatusOK, events)
}

// GET /api/v1/calendar/events/today
func (c *CalendarController) TodaysEventsHandler(w http.ResponseWriter, r *http.Request) {
	events, err := c.calendarService.TodaysEvents(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to list today's events")
		return
	}
	if events == nil {
		events = []*models.CalendarEvent{}
	}
	utils.RespondWithJSON(w, http.StatusOK, events)
}

// GET /api/v1/calendar/events/statistics
func (c *CalendarController) EventStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err == nil {
			from = &t
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err == nil {
			to = &t
		}
	}

	stats, err := c.calendarService.GetStatistics(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, err, "Failed to compute event statistics")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

// GET /api/v1/calendar/events/{id}
func (c *CalendarController) GetEventHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	event, err := c.calendarService.GetEvent(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch event")
		return
	}
	if event == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Event not found", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, event)
}

// PATCH /api/v1/calendar/events/{id}
func (c *CalendarController) UpdateEventHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.UpdateEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	event, err := c.calendarService.UpdateEvent(r.Context(), id, req, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to update event")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, event)
}

// DELETE /api/v1/calendar/events/{id}
func (c *CalendarController) DeleteEventHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := c.calendarService.DeleteEvent(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete event")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// POST /api/v1/calendar/conflicts
func (c *CalendarController) CheckConflictHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.ConflictCheckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.calendarService.CheckSchedulingConflict(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "Failed to check conflicts")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, result)
}
