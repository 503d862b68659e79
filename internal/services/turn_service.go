package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ips-ux/maintenance-manager/internal/constants"
	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

// maxTransitionRetries bounds the reload-and-retry loop around
// version-checked status transitions.
const maxTransitionRetries = 3

// TurnService owns the turn lifecycle and the unit-state transitions it
// drags along. Activity logging is best-effort and never fails the
// primary write.
type TurnService struct {
	turnRepo repositories.TurnRepository
	unitRepo repositories.UnitRepository
	userRepo repositories.UserRepository
	activity *ActivityService
}

func NewTurnService(
	turnRepo repositories.TurnRepository,
	unitRepo repositories.UnitRepository,
	userRepo repositories.UserRepository,
	activity *ActivityService,
) *TurnService {
	return &TurnService{
		turnRepo: turnRepo,
		unitRepo: unitRepo,
		userRepo: userRepo,
		activity: activity,
	}
}

/* ─────────────── lifecycle ─────────────── */

func (s *TurnService) CreateTurn(ctx context.Context, req dtos.CreateTurnRequest, actor dtos.Actor) (*models.Turn, error) {
	unit, err := s.unitRepo.GetByID(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, utils.ErrNotFound
	}

	now := time.Now().UTC()
	start := now
	if req.StartDate != nil {
		start = req.StartDate.UTC()
	}
	priority := req.Priority
	if priority == "" {
		priority = models.TurnPriorityNormal
	}

	turn := &models.Turn{
		ID:                     uuid.New(),
		UnitID:                 unit.ID,
		UnitNumber:             unit.UnitNumber,
		Status:                 models.TurnStatusInProgress,
		StartDate:              start,
		TargetCompletionDate:   req.TargetCompletionDate.UTC(),
		AssignedTechnicianID:   req.AssignedTechnicianID,
		AssignedTechnicianName: req.AssignedTechnicianName,
		Checklist:              buildChecklist(req.Checklist),
		Priority:               priority,
		Notes:                  req.Notes,
	}
	refreshTurnDerived(turn, now)

	if err := s.turnRepo.CreateWithUnitLink(ctx, turn); err != nil {
		return nil, err
	}

	s.activity.Log(ctx, actor, models.ActionTurnCreated,
		fmt.Sprintf("Started turn for unit %s", unit.UnitNumber),
		"turn", turn.ID, unit.UnitNumber,
		map[string]any{
			"technician":             turn.AssignedTechnicianName,
			"target_completion_date": turn.TargetCompletionDate,
			"total_tasks":            turn.TotalTasks,
		})

	return s.turnRepo.GetByID(ctx, turn.ID)
}

// UpdateTask merges the request onto one checklist task and recomputes
// the derived progress fields. Stamping of the completion marker happens
// once; resubmitting completed=true leaves the original stamp untouched.
func (s *TurnService) UpdateTask(ctx context.Context, turnID uuid.UUID, taskID string, req dtos.UpdateTaskRequest, actor dtos.Actor) (*models.Turn, error) {
	var (
		newlyCompleted bool
		taskName       string
		unitNumber     string
	)

	err := s.turnRepo.UpdateWithRetry(ctx, turnID, func(t *models.Turn) error {
		if !t.IsOpen() {
			return utils.ErrTurnNotOpen
		}
		unitNumber = t.UnitNumber

		idx := -1
		for i := range t.Checklist {
			if t.Checklist[i].TaskID == taskID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return utils.ErrTaskNotFound
		}
		task := &t.Checklist[idx]
		taskName = task.TaskName

		if req.Notes != nil {
			task.Notes = *req.Notes
		}
		if req.Photos != nil {
			task.Photos = req.Photos
		}
		if req.Completed != nil {
			if *req.Completed && task.CompletedAt == nil {
				now := time.Now().UTC()
				task.Completed = true
				task.CompletedAt = &now
				task.CompletedBy = utils.Ptr(actor.UserID)
				task.CompletedByName = utils.Ptr(actor.Name)
				newlyCompleted = true
			} else if !*req.Completed {
				task.Completed = false
				task.CompletedAt = nil
				task.CompletedBy = nil
				task.CompletedByName = nil
			}
		}

		refreshTurnDerived(t, time.Now().UTC())
		return nil
	})
	if err != nil {
		return nil, notFoundIfNoRows(err)
	}

	if newlyCompleted {
		s.activity.Log(ctx, actor, models.ActionTaskCompleted,
			fmt.Sprintf("Completed task %q on unit %s", taskName, unitNumber),
			"turn", turnID, unitNumber,
			map[string]any{"task_id": taskID, "task_name": taskName})
	}

	return s.turnRepo.GetByID(ctx, turnID)
}

// CompleteTurn closes the turn and releases its unit in one transaction.
// Completion is allowed regardless of checklist state.
func (s *TurnService) CompleteTurn(ctx context.Context, turnID uuid.UUID, actor dtos.Actor) (*models.Turn, error) {
	for attempt := 0; attempt < maxTransitionRetries; attempt++ {
		t, err := s.turnRepo.GetByID(ctx, turnID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, nil
		}
		if !t.IsOpen() {
			return nil, utils.ErrTurnNotOpen
		}

		now := time.Now().UTC()
		updated, err := s.turnRepo.CompleteAtomic(ctx, t.ID, t.RowVersion, now)
		if errors.Is(err, utils.ErrRowVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.recordTechnicianCompletion(ctx, t, now)
		s.activity.Log(ctx, actor, models.ActionTurnCompleted,
			fmt.Sprintf("Completed turn for unit %s", t.UnitNumber),
			"turn", t.ID, t.UnitNumber,
			map[string]any{
				"progress_percentage": t.ProgressPercentage,
				"completed_tasks":     t.CompletedTasks,
				"total_tasks":         t.TotalTasks,
			})
		return updated, nil
	}
	return nil, utils.ErrRowVersionConflict
}

func (s *TurnService) BlockTurn(ctx context.Context, turnID uuid.UUID, reason string, actor dtos.Actor) (*models.Turn, error) {
	for attempt := 0; attempt < maxTransitionRetries; attempt++ {
		t, err := s.turnRepo.GetByID(ctx, turnID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, nil
		}
		if !t.IsOpen() {
			return nil, utils.ErrTurnNotOpen
		}

		updated, err := s.turnRepo.BlockAtomic(ctx, t.ID, t.RowVersion, reason)
		if errors.Is(err, utils.ErrRowVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.activity.Log(ctx, actor, models.ActionTurnBlocked,
			fmt.Sprintf("Blocked turn for unit %s: %s", t.UnitNumber, reason),
			"turn", t.ID, t.UnitNumber,
			map[string]any{"reason": reason})
		return updated, nil
	}
	return nil, utils.ErrRowVersionConflict
}

func (s *TurnService) UpdateTurn(ctx context.Context, turnID uuid.UUID, req dtos.UpdateTurnRequest, actor dtos.Actor) (*models.Turn, error) {
	err := s.turnRepo.UpdateWithRetry(ctx, turnID, func(t *models.Turn) error {
		if !t.IsOpen() {
			return utils.ErrTurnNotOpen
		}
		if req.TargetCompletionDate != nil {
			t.TargetCompletionDate = req.TargetCompletionDate.UTC()
		}
		if req.AssignedTechnicianID != nil {
			t.AssignedTechnicianID = *req.AssignedTechnicianID
		}
		if req.AssignedTechnicianName != nil {
			t.AssignedTechnicianName = *req.AssignedTechnicianName
		}
		if req.Priority != nil {
			t.Priority = *req.Priority
		}
		if req.Notes != nil {
			t.Notes = *req.Notes
		}
		refreshTurnDerived(t, time.Now().UTC())
		return nil
	})
	if err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return s.turnRepo.GetByID(ctx, turnID)
}

// DeleteTurn is the administrative escape hatch. Deleting an id that no
// longer exists succeeds without touching any unit.
func (s *TurnService) DeleteTurn(ctx context.Context, turnID uuid.UUID) error {
	return s.turnRepo.DeleteWithUnitReset(ctx, turnID)
}

/* ─────────────── reads ─────────────── */

func (s *TurnService) GetTurn(ctx context.Context, turnID uuid.UUID) (*models.Turn, error) {
	return s.turnRepo.GetByID(ctx, turnID)
}

func (s *TurnService) ListTurns(ctx context.Context, q repositories.TurnQuery) ([]*models.Turn, error) {
	if q.Limit <= 0 {
		q.Limit = constants.DefaultListLimit
	}
	if q.Limit > constants.MaxListLimit {
		q.Limit = constants.MaxListLimit
	}
	return s.turnRepo.List(ctx, q)
}

func (s *TurnService) ListTurnsByUnit(ctx context.Context, unitID uuid.UUID) ([]*models.Turn, error) {
	return s.turnRepo.ListByUnit(ctx, unitID)
}

/* ─────────────── maintenance ─────────────── */

// RecalculateAllProgress refreshes the derived fields of every open turn
// as one atomic batch and reports how many were touched.
func (s *TurnService) RecalculateAllProgress(ctx context.Context) (int, error) {
	open, err := s.turnRepo.ListByStatuses(ctx,
		[]models.TurnStatusType{models.TurnStatusInProgress, models.TurnStatusBlocked},
		constants.RecalcBatchLimit)
	if err != nil {
		return 0, err
	}
	if len(open) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	for _, t := range open {
		refreshTurnDerived(t, now)
	}
	if err := s.turnRepo.UpdateDerivedBatch(ctx, open); err != nil {
		return 0, err
	}
	return len(open), nil
}

/* ─────────────── internals ─────────────── */

// recordTechnicianCompletion folds the finished turn into the assigned
// technician's running stats. Best-effort.
func (s *TurnService) recordTechnicianCompletion(ctx context.Context, t *models.Turn, now time.Time) {
	if t.AssignedTechnicianID == uuid.Nil {
		return
	}
	days := now.Sub(t.StartDate).Hours() / 24
	if days < 0 {
		days = 0
	}
	if err := s.userRepo.RecordTurnCompletion(ctx, t.AssignedTechnicianID, days); err != nil {
		utils.Logger.WithError(err).Warnf("failed to record completion stats for technician %s", t.AssignedTechnicianID)
	}
}
