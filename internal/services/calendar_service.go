package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ips-ux/maintenance-manager/internal/constants"
	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

// CalendarService owns event CRUD plus the advisory conflict check.
// Conflicts are reported, never enforced at write time; two concurrent
// schedulers can still double-book and the UI surfaces it.
type CalendarService struct {
	eventRepo repositories.CalendarEventRepository
	activity  *ActivityService
}

func NewCalendarService(eventRepo repositories.CalendarEventRepository, activity *ActivityService) *CalendarService {
	return &CalendarService{eventRepo: eventRepo, activity: activity}
}

func (s *CalendarService) CreateEvent(ctx context.Context, req dtos.CreateEventRequest, actor dtos.Actor) (*models.CalendarEvent, error) {
	event := &models.CalendarEvent{
		ID:             uuid.New(),
		Title:          req.Title,
		Description:    req.Description,
		EventType:      req.EventType,
		Status:         models.EventStatusScheduled,
		StartDateTime:  req.StartDateTime.UTC(),
		EndDateTime:    req.EndDateTime.UTC(),
		UnitID:         req.UnitID,
		UnitNumber:     req.UnitNumber,
		TurnID:         req.TurnID,
		VendorID:       req.VendorID,
		AssignedTo:     req.AssignedTo,
		AssignedToName: req.AssignedToName,
		CreatedBy:      actor.UserID,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	if event.VendorID != nil {
		s.activity.Log(ctx, actor, models.ActionVendorScheduled,
			fmt.Sprintf("Scheduled %q", event.Title),
			"calendar_event", event.ID, event.Title,
			map[string]any{
				"vendor_id": event.VendorID,
				"start":     event.StartDateTime,
				"end":       event.EndDateTime,
			})
	}

	return s.eventRepo.GetByID(ctx, event.ID)
}

func (s *CalendarService) UpdateEvent(ctx context.Context, eventID uuid.UUID, req dtos.UpdateEventRequest, actor dtos.Actor) (*models.CalendarEvent, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, utils.ErrNotFound
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.StartDateTime != nil {
		event.StartDateTime = req.StartDateTime.UTC()
	}
	if req.EndDateTime != nil {
		event.EndDateTime = req.EndDateTime.UTC()
	}
	if req.AssignedTo != nil {
		event.AssignedTo = req.AssignedTo
	}
	if req.AssignedToName != nil {
		event.AssignedToName = *req.AssignedToName
	}
	if req.Status != nil {
		event.Status = *req.Status
		switch *req.Status {
		case models.EventStatusCompleted:
			event.CompletedAt = utils.Ptr(time.Now().UTC())
		case models.EventStatusCancelled:
			event.CancelledReason = req.CancelledReason
		}
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return s.eventRepo.GetByID(ctx, eventID)
}

func (s *CalendarService) DeleteEvent(ctx context.Context, eventID uuid.UUID) error {
	return s.eventRepo.Delete(ctx, eventID)
}

func (s *CalendarService) GetEvent(ctx context.Context, eventID uuid.UUID) (*models.CalendarEvent, error) {
	return s.eventRepo.GetByID(ctx, eventID)
}

func (s *CalendarService) ListEvents(ctx context.Context, q repositories.EventQuery) ([]*models.CalendarEvent, error) {
	if q.Limit <= 0 {
		q.Limit = constants.ActivityFeedLimit
	}
	if q.Limit > constants.MaxListLimit {
		q.Limit = constants.MaxListLimit
	}
	return s.eventRepo.List(ctx, q)
}

// UpcomingEvents lists Scheduled events starting within the next N
// days.
func (s *CalendarService) UpcomingEvents(ctx context.Context, days int) ([]*models.CalendarEvent, error) {
	if days <= 0 {
		days = 7
	}
	now := time.Now().UTC()
	to := now.AddDate(0, 0, days)
	return s.eventRepo.List(ctx, repositories.EventQuery{
		Status: models.EventStatusScheduled,
		From:   &now,
		To:     &to,
		Limit:  constants.MaxListLimit,
	})
}

// TodaysEvents lists events touching the current UTC day.
func (s *CalendarService) TodaysEvents(ctx context.Context) ([]*models.CalendarEvent, error) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	return s.eventRepo.List(ctx, repositories.EventQuery{
		From:  &from,
		To:    &to,
		Limit: constants.MaxListLimit,
	})
}

// GetStatistics rolls up event counts by status and type over an
// optional date window.
func (s *CalendarService) GetStatistics(ctx context.Context, from, to *time.Time) (*dtos.EventStatistics, error) {
	events, err := s.eventRepo.List(ctx, repositories.EventQuery{
		From:  from,
		To:    to,
		Limit: constants.StatsScanLimit,
	})
	if err != nil {
		return nil, err
	}

	stats := &dtos.EventStatistics{
		TotalEvents: len(events),
		ByStatus:    map[string]int{},
		ByEventType: map[string]int{},
	}
	for _, e := range events {
		stats.ByStatus[string(e.Status)]++
		stats.ByEventType[string(e.EventType)]++
	}
	return stats, nil
}

// CheckSchedulingConflict reports whether the proposed [start, end)
// window collides with any of the assignee's Scheduled events. Touching
// endpoints do not conflict.
func (s *CalendarService) CheckSchedulingConflict(ctx context.Context, req dtos.ConflictCheckRequest) (*dtos.ConflictCheckResult, error) {
	overlapping, err := s.eventRepo.ListOverlapping(ctx,
		req.AssignedTo, req.StartDateTime.UTC(), req.EndDateTime.UTC(), req.ExcludeEventID)
	if err != nil {
		return nil, err
	}
	if overlapping == nil {
		overlapping = []*models.CalendarEvent{}
	}
	return &dtos.ConflictCheckResult{
		HasConflict:       len(overlapping) > 0,
		ConflictingEvents: overlapping,
	}, nil
}
