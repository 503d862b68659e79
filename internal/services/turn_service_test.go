package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

type turnFixture struct {
	store    *fakeStore
	activity *fakeActivityRepo
	users    *fakeUserRepo
	svc      *TurnService
}

func newTurnFixture() *turnFixture {
	store := newFakeStore()
	activity := &fakeActivityRepo{}
	users := newFakeUserRepo()
	svc := NewTurnService(
		&fakeTurnRepo{s: store},
		&fakeUnitRepo{s: store},
		users,
		NewActivityService(activity),
	)
	return &turnFixture{store: store, activity: activity, users: users, svc: svc}
}

func (f *turnFixture) addUnit(unitNumber string) *models.Unit {
	u := &models.Unit{
		ID:         uuid.New(),
		UnitNumber: unitNumber,
		Status:     models.UnitStatusOccupied,
	}
	u.RowVersion = 1
	f.store.units[u.ID] = u
	return u
}

func testActor() dtos.Actor {
	return dtos.Actor{UserID: uuid.New(), Name: "Dana Admin", Role: models.RoleAdmin}
}

func (f *turnFixture) createTurn(t *testing.T, unitID uuid.UUID) *models.Turn {
	t.Helper()
	turn, err := f.svc.CreateTurn(context.Background(), dtos.CreateTurnRequest{
		UnitID:                 unitID,
		TargetCompletionDate:   time.Now().UTC().AddDate(0, 0, 7),
		AssignedTechnicianID:   uuid.New(),
		AssignedTechnicianName: "Marcus Reed",
	}, testActor())
	require.NoError(t, err)
	require.NotNil(t, turn)
	return turn
}

func (f *turnFixture) actions() []models.ActionType {
	out := make([]models.ActionType, 0, len(f.activity.records))
	for _, a := range f.activity.records {
		out = append(out, a.Action)
	}
	return out
}

func TestCreateTurnClaimsUnit(t *testing.T) {
	f := newTurnFixture()
	unit := f.addUnit("204")

	turn := f.createTurn(t, unit.ID)

	require.Equal(t, models.TurnStatusInProgress, turn.Status)
	require.Equal(t, "204", turn.UnitNumber)
	require.Equal(t, models.TurnPriorityNormal, turn.Priority, "priority defaults to Normal")
	require.Len(t, turn.Checklist, 12, "empty request falls back to the standard template")
	require.Equal(t, "task-1", turn.Checklist[0].TaskID)
	require.Equal(t, 12, turn.TotalTasks)
	require.Equal(t, 0, turn.CompletedTasks)
	require.Equal(t, 0.0, turn.ProgressPercentage)

	stored := f.store.units[unit.ID]
	require.NotNil(t, stored.CurrentTurnID)
	require.Equal(t, turn.ID, *stored.CurrentTurnID)
	require.Equal(t, models.UnitStatusInProgress, stored.Status)
	require.True(t, stored.IsVacant)

	require.Contains(t, f.actions(), models.ActionTurnCreated)
}

func TestCreateTurnUnknownUnit(t *testing.T) {
	f := newTurnFixture()

	_, err := f.svc.CreateTurn(context.Background(), dtos.CreateTurnRequest{
		UnitID:                 uuid.New(),
		TargetCompletionDate:   time.Now().UTC().AddDate(0, 0, 7),
		AssignedTechnicianID:   uuid.New(),
		AssignedTechnicianName: "Marcus Reed",
	}, testActor())
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestCreateTurnRejectsSecondOpenTurn(t *testing.T) {
	f := newTurnFixture()
	unit := f.addUnit("204")
	f.createTurn(t, unit.ID)

	_, err := f.svc.CreateTurn(context.Background(), dtos.CreateTurnRequest{
		UnitID:                 unit.ID,
		TargetCompletionDate:   time.Now().UTC().AddDate(0, 0, 7),
		AssignedTechnicianID:   uuid.New(),
		AssignedTechnicianName: "Marcus Reed",
	}, testActor())
	require.ErrorIs(t, err, utils.ErrUnitHasOpenTurn)
}

func TestUpdateTaskStampsCompletionOnce(t *testing.T) {
	f := newTurnFixture()
	unit := f.addUnit("204")
	turn := f.createTurn(t, unit.ID)
	ctx := context.Background()

	first := testActor()
	updated, err := f.svc.UpdateTask(ctx, turn.ID, "task-1", dtos.UpdateTaskRequest{
		Completed: utils.Ptr(true),
	}, first)
	require.NoError(t, err)

	task := updated.Checklist[0]
	require.True(t, task.Completed)
	require.NotNil(t, task.CompletedAt)
	require.Equal(t, first.UserID, *task.CompletedBy)
	require.Equal(t, 8.33, updated.ProgressPercentage)
	stamp := *task.CompletedAt

	// resubmitting completed=true from a different actor keeps the
	// original stamp
	second := testActor()
	updated, err = f.svc.UpdateTask(ctx, turn.ID, "task-1", dtos.UpdateTaskRequest{
		Completed: utils.Ptr(true),
	}, second)
	require.NoError(t, err)
	task = updated.Checklist[0]
	require.Equal(t, stamp, *task.CompletedAt)
	require.Equal(t, first.UserID, *task.CompletedBy)

	// un-completing clears every completion field
	updated, err = f.svc.UpdateTask(ctx, turn.ID, "task-1", dtos.UpdateTaskRequest{
		Completed: utils.Ptr(false),
	}, second)
	require.NoError(t, err)
	task = updated.Checklist[0]
	require.False(t, task.Completed)
	require.Nil(t, task.CompletedAt)
	require.Nil(t, task.CompletedBy)
	require.Equal(t, 0.0, updated.ProgressPercentage)
}

func TestUpdateTaskRecomputesProgress(t *testing.T) {
	f := newTurnFixture()
	unit := f.addUnit("204")
	turn := f.createTurn(t, unit.ID)
	ctx := context.Background()
	actor := testActor()

	var updated *models.Turn
	var err error
	for i := 1; i <= 6; i++ {
		updated, err = f.svc.UpdateTask(ctx, turn.ID, turn.Checklist[i-1].TaskID,
			dtos.UpdateTaskRequest{Completed: utils.Ptr(true)}, actor)
		require.NoError(t, err)
	}

	require.Equal(t, 6, updated.CompletedTasks)
	require.Equal(t, 50.0, updated.ProgressPercentage)
}

func TestUpdateTaskUnknownTask(t *testing.T) {
	f := newTurnFixture()
	unit := f.addUnit("204")
	turn := f.createTurn(t, unit.ID)

	_, err := f.svc.UpdateTask(context.Background(), turn.ID, "task-99",
		dtos.UpdateTaskRequest{Completed: utils.Ptr(true)}, testActor())
	require.ErrorIs(t, err, utils.ErrTaskNotFound)
}

func TestUpdateTaskUnknownTurn(t *testing.T) {
	f := newTurnFixture()

	_, err := f.svc.UpdateTask(context.Background(), uuid.New(), "task-1",
		dtos.UpdateTaskRequest{Completed: utils.Ptr(true)}, testActor())
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestUpdateTurnUnknownTurn(t *testing.T) {
	f := newTurnFixture()

	_, err := f.svc.UpdateTurn(context.Background(), uuid.New(),
		dtos.UpdateTurnRequest{Notes: utils.Ptr("repaint hallway")}, testActor())
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestUpdateTaskOnCompletedTurn(t *testing.T) {
	f := newTurnFixture()
	unit := f.addUnit("204")
	turn := f.createTurn(t, unit.ID)
	ctx := context.Background()

	_, err := f.svc.CompleteTurn(ctx, turn.ID, testActor())
	require.NoError(t, err)

	_, err = f.svc.UpdateTask(ctx, turn.ID, "task-1",
		dtos.UpdateTaskRequest{Completed: utils.Ptr(true)}, testActor())
	require.ErrorIs(t, err, utils.ErrTurnNotOpen)
}

func TestCompleteTurnReleasesUnit(t *testing.T) {
	f := newTurnFixture()
	unit := f.addUnit("204")
	turn := f.createTurn(t, unit.ID)
	tech := &models.User{
		ID:          turn.AssignedTechnicianID,
		DisplayName: "Marcus Reed",
		Role:        models.RoleTechnician,
		Active:      true,
	}
	f.users.users[tech.ID] = tech

	// completion is permitted with an unfinished checklist
	completed, err := f.svc.CompleteTurn(context.Background(), turn.ID, testActor())
	require.NoError(t, err)
	require.NotNil(t, completed)
	require.Equal(t, models.TurnStatusCompleted, completed.Status)
	require.NotNil(t, completed.ActualCompletionDate)

	stored := f.store.units[unit.ID]
	require.Equal(t, models.UnitStatusReady, stored.Status)
	require.Nil(t, stored.CurrentTurnID)
	require.NotNil(t, stored.LastTurnCompletedDate)

	require.Equal(t, 1, f.users.users[tech.ID].TurnsCompleted)
	require.Contains(t, f.actions(), models.ActionTurnCompleted)
}

func TestCompleteTurnRejectsTerminalTurn(t *testing.T) {
	f := newTurnFixture()
	unit := f.addUnit("204")
	turn := f.createTurn(t, unit.ID)
	ctx := context.Background()

	_, err := f.svc.CompleteTurn(ctx, turn.ID, testActor())
	require.NoError(t, err)

	_, err = f.svc.CompleteTurn(ctx, turn.ID, testActor())
	require.ErrorIs(t, err, utils.ErrTurnNotOpen)
}

func TestCompleteTurnMissingTurn(t *testing.T) {
	f := newTurnFixture()

	turn, err := f.svc.CompleteTurn(context.Background(), uuid.New(), testActor())
	require.NoError(t, err)
	require.Nil(t, turn)
}

func TestBlockTurnKeepsUnitLink(t *testing.T) {
	f := newTurnFixture()
	unit := f.addUnit("204")
	turn := f.createTurn(t, unit.ID)

	blocked, err := f.svc.BlockTurn(context.Background(), turn.ID, "Waiting on parts", testActor())
	require.NoError(t, err)
	require.Equal(t, models.TurnStatusBlocked, blocked.Status)
	require.NotNil(t, blocked.BlockageReason)
	require.Equal(t, "Waiting on parts", *blocked.BlockageReason)

	stored := f.store.units[unit.ID]
	require.Equal(t, models.UnitStatusBlocked, stored.Status)
	require.NotNil(t, stored.CurrentTurnID, "a blocked turn still holds its unit")
	require.Equal(t, turn.ID, *stored.CurrentTurnID)

	// blocked turns stay open for task updates and completion
	_, err = f.svc.UpdateTask(context.Background(), turn.ID, "task-1",
		dtos.UpdateTaskRequest{Completed: utils.Ptr(true)}, testActor())
	require.NoError(t, err)
}

func TestDeleteTurnResetsUnit(t *testing.T) {
	f := newTurnFixture()
	unit := f.addUnit("204")
	turn := f.createTurn(t, unit.ID)
	ctx := context.Background()

	require.NoError(t, f.svc.DeleteTurn(ctx, turn.ID))

	stored := f.store.units[unit.ID]
	require.Nil(t, stored.CurrentTurnID)
	require.Equal(t, models.UnitStatusReady, stored.Status)

	gone, err := f.svc.GetTurn(ctx, turn.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestDeleteTurnMissingIsNoop(t *testing.T) {
	f := newTurnFixture()
	unit := f.addUnit("204")
	f.createTurn(t, unit.ID)
	before := *f.store.units[unit.ID]

	require.NoError(t, f.svc.DeleteTurn(context.Background(), uuid.New()))
	require.Equal(t, before, *f.store.units[unit.ID], "unrelated units stay untouched")
}

func TestRecalculateAllProgress(t *testing.T) {
	f := newTurnFixture()
	turnA := f.createTurn(t, f.addUnit("204").ID)
	turnB := f.createTurn(t, f.addUnit("205").ID)

	_, err := f.svc.BlockTurn(context.Background(), turnB.ID, "Flood damage", testActor())
	require.NoError(t, err)

	// drift the stored derived fields
	f.store.turns[turnA.ID].ProgressPercentage = 99
	f.store.turns[turnB.ID].CompletedTasks = 7

	n, err := f.svc.RecalculateAllProgress(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n, "both In Progress and Blocked turns are swept")

	require.Equal(t, 0.0, f.store.turns[turnA.ID].ProgressPercentage)
	require.Equal(t, 0, f.store.turns[turnB.ID].CompletedTasks)
}
