package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ips-ux/maintenance-manager/internal/config"
	"github.com/ips-ux/maintenance-manager/internal/models"
)

func newEscalationFixture() (*turnFixture, *TurnEscalationService) {
	f := newTurnFixture()
	// no messaging credentials, the sweep runs with alerts disabled
	esc := NewTurnEscalationService(&config.Config{},
		&fakeTurnRepo{s: f.store}, f.users, NewActivityService(f.activity))
	return f, esc
}

func (f *turnFixture) countAction(action models.ActionType) int {
	n := 0
	for _, a := range f.activity.records {
		if a.Action == action {
			n++
		}
	}
	return n
}

func TestOverdueSweepStampsOnce(t *testing.T) {
	f, esc := newEscalationFixture()
	turn := f.createTurn(t, f.addUnit("204").ID)
	ctx := context.Background()

	// push the target into the past
	f.store.turns[turn.ID].TargetCompletionDate = time.Now().UTC().Add(-49 * time.Hour)

	require.NoError(t, esc.RunOverdueSweep(ctx))
	stamped := f.store.turns[turn.ID].OverdueNotifiedAt
	require.NotNil(t, stamped)
	require.Equal(t, 1, f.countAction(models.ActionTurnOverdue))

	// a second sweep sees the stamp and stays quiet
	require.NoError(t, esc.RunOverdueSweep(ctx))
	require.Equal(t, stamped, f.store.turns[turn.ID].OverdueNotifiedAt)
	require.Equal(t, 1, f.countAction(models.ActionTurnOverdue))
}

func TestOverdueSweepSkipsOnTimeTurns(t *testing.T) {
	f, esc := newEscalationFixture()
	turn := f.createTurn(t, f.addUnit("204").ID)

	require.NoError(t, esc.RunOverdueSweep(context.Background()))
	require.Nil(t, f.store.turns[turn.ID].OverdueNotifiedAt)
	require.Equal(t, 0, f.countAction(models.ActionTurnOverdue))
}

func TestOverdueSweepSkipsBlockedTurns(t *testing.T) {
	f, esc := newEscalationFixture()
	turn := f.createTurn(t, f.addUnit("204").ID)
	ctx := context.Background()

	_, err := f.svc.BlockTurn(ctx, turn.ID, "Flood damage", testActor())
	require.NoError(t, err)
	f.store.turns[turn.ID].TargetCompletionDate = time.Now().UTC().Add(-49 * time.Hour)

	require.NoError(t, esc.RunOverdueSweep(ctx))
	require.Nil(t, f.store.turns[turn.ID].OverdueNotifiedAt, "only In Progress turns escalate")
}

func TestOverdueSweepRecordsSystemActor(t *testing.T) {
	f, esc := newEscalationFixture()
	turn := f.createTurn(t, f.addUnit("204").ID)
	f.store.turns[turn.ID].TargetCompletionDate = time.Now().UTC().Add(-25 * time.Hour)

	require.NoError(t, esc.RunOverdueSweep(context.Background()))

	var rec *models.Activity
	for _, a := range f.activity.records {
		if a.Action == models.ActionTurnOverdue {
			rec = a
		}
	}
	require.NotNil(t, rec)
	require.Equal(t, uuid.Nil, rec.UserID)
	require.Equal(t, "System", rec.UserName)
}
