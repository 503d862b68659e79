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

type unitFixture struct {
	store    *fakeStore
	activity *fakeActivityRepo
	svc      *UnitService
}

func newUnitFixture() *unitFixture {
	store := newFakeStore()
	activity := &fakeActivityRepo{}
	svc := NewUnitService(&fakeUnitRepo{s: store}, NewActivityService(activity))
	return &unitFixture{store: store, activity: activity, svc: svc}
}

func (f *unitFixture) addUnit(u *models.Unit) *models.Unit {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.RowVersion = 1
	f.store.units[u.ID] = u
	return u
}

func TestCreateUnitDefaultsToOccupied(t *testing.T) {
	f := newUnitFixture()

	unit, err := f.svc.CreateUnit(context.Background(), dtos.CreateUnitRequest{
		UnitNumber: "204",
		Bedrooms:   2,
		Bathrooms:  1.5,
		SquareFeet: 860,
		Building:   "North",
		Floor:      2,
	}, testActor())
	require.NoError(t, err)
	require.Equal(t, models.UnitStatusOccupied, unit.Status)
	require.False(t, unit.IsVacant)
	require.Nil(t, unit.CurrentTurnID)
}

func TestCreateUnitRejectsDuplicateNumber(t *testing.T) {
	f := newUnitFixture()
	f.addUnit(&models.Unit{UnitNumber: "204", Status: models.UnitStatusOccupied})

	_, err := f.svc.CreateUnit(context.Background(), dtos.CreateUnitRequest{
		UnitNumber: "204",
	}, testActor())
	require.ErrorIs(t, err, utils.ErrUnitNumberTaken)
}

func TestMarkVacantStartsVacancyClock(t *testing.T) {
	f := newUnitFixture()
	unit := f.addUnit(&models.Unit{UnitNumber: "204", Status: models.UnitStatusOccupied})
	// just under three days back so the ceil stays at 3 for the test's
	// lifetime
	since := time.Now().UTC().Add(-71 * time.Hour)

	updated, err := f.svc.MarkVacant(context.Background(), unit.ID,
		dtos.MarkVacantRequest{VacantSince: &since}, testActor())
	require.NoError(t, err)
	require.True(t, updated.IsVacant)
	require.NotNil(t, updated.VacantSince)
	require.Equal(t, models.UnitStatusReady, updated.Status)

	got, err := f.svc.GetUnit(context.Background(), unit.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.DaysVacant, "reads recompute days_vacant against the clock")
}

func TestMarkOccupiedClearsVacancy(t *testing.T) {
	f := newUnitFixture()
	since := time.Now().UTC().AddDate(0, 0, -5)
	unit := f.addUnit(&models.Unit{
		UnitNumber:  "204",
		Status:      models.UnitStatusReady,
		IsVacant:    true,
		VacantSince: &since,
		DaysVacant:  5,
	})

	updated, err := f.svc.MarkOccupied(context.Background(), unit.ID, testActor())
	require.NoError(t, err)
	require.False(t, updated.IsVacant)
	require.Nil(t, updated.VacantSince)
	require.Equal(t, 0, updated.DaysVacant)
	require.Equal(t, models.UnitStatusOccupied, updated.Status)
}

func TestMarkVacantUnknownUnit(t *testing.T) {
	f := newUnitFixture()

	_, err := f.svc.MarkVacant(context.Background(), uuid.New(), dtos.MarkVacantRequest{}, testActor())
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestUpdateUnitUnknownID(t *testing.T) {
	f := newUnitFixture()

	_, err := f.svc.UpdateUnit(context.Background(), uuid.New(),
		dtos.UpdateUnitRequest{Notes: utils.Ptr("fresh paint")}, testActor())
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestUpdateUnitRecomputesVacancyWhenTouched(t *testing.T) {
	f := newUnitFixture()
	unit := f.addUnit(&models.Unit{UnitNumber: "204", Status: models.UnitStatusOccupied})
	since := time.Now().UTC().Add(-47 * time.Hour)

	updated, err := f.svc.UpdateUnit(context.Background(), unit.ID, dtos.UpdateUnitRequest{
		IsVacant:    utils.Ptr(true),
		VacantSince: &since,
	}, testActor())
	require.NoError(t, err)
	require.True(t, updated.IsVacant)
	require.Equal(t, 2, updated.DaysVacant)

	// flipping back wipes the vacancy start
	updated, err = f.svc.UpdateUnit(context.Background(), unit.ID, dtos.UpdateUnitRequest{
		IsVacant: utils.Ptr(false),
	}, testActor())
	require.NoError(t, err)
	require.False(t, updated.IsVacant)
	require.Nil(t, updated.VacantSince)
	require.Equal(t, 0, updated.DaysVacant)
}

func TestUnitStatistics(t *testing.T) {
	f := newUnitFixture()
	now := time.Now().UTC()
	f.addUnit(&models.Unit{UnitNumber: "101", Status: models.UnitStatusOccupied})
	f.addUnit(&models.Unit{UnitNumber: "102", Status: models.UnitStatusOccupied})
	f.addUnit(&models.Unit{
		UnitNumber: "204", Status: models.UnitStatusReady,
		IsVacant: true, VacantSince: utils.Ptr(now.Add(-47 * time.Hour)),
	})
	f.addUnit(&models.Unit{
		UnitNumber: "205", Status: models.UnitStatusInProgress,
		IsVacant: true, VacantSince: utils.Ptr(now.Add(-71 * time.Hour)),
	})

	stats, err := f.svc.GetStatistics(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, stats.TotalUnits)
	require.Equal(t, 2, stats.VacantUnits)
	require.Equal(t, 2, stats.ByStatus[string(models.UnitStatusOccupied)])
	require.Equal(t, 1, stats.ByStatus[string(models.UnitStatusReady)])
	require.Equal(t, 2.5, stats.AvgDaysVacant, "average vacancy carries one decimal")
}

func TestRefreshVacancyCounters(t *testing.T) {
	f := newUnitFixture()
	now := time.Now().UTC()
	stale := f.addUnit(&models.Unit{
		UnitNumber: "204", Status: models.UnitStatusReady,
		IsVacant: true, VacantSince: utils.Ptr(now.Add(-95 * time.Hour)),
		DaysVacant: 1,
	})
	current := f.addUnit(&models.Unit{
		UnitNumber: "205", Status: models.UnitStatusReady,
		IsVacant: true, VacantSince: utils.Ptr(now.Add(-47 * time.Hour)),
		DaysVacant: 2,
	})

	n, err := f.svc.RefreshVacancyCounters(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n, "only drifted counters are rewritten")
	require.Equal(t, 4, f.store.units[stale.ID].DaysVacant)
	require.Equal(t, 2, f.store.units[current.ID].DaysVacant)
}

func TestCreateBulkUnitsReportsRejects(t *testing.T) {
	f := newUnitFixture()
	f.addUnit(&models.Unit{UnitNumber: "101", Status: models.UnitStatusOccupied})

	result, err := f.svc.CreateBulkUnits(context.Background(), dtos.BulkCreateUnitsRequest{
		Units: []dtos.CreateUnitRequest{
			{UnitNumber: "101"},
			{UnitNumber: "102"},
			{UnitNumber: "102"},
			{UnitNumber: "103"},
		},
	}, testActor())
	require.NoError(t, err)
	require.Equal(t, 2, result.Created)
	require.Len(t, result.Errors, 2)
	require.Equal(t, 0, result.Errors[0].Index)
	require.Equal(t, "101", result.Errors[0].Identifier)
	require.Equal(t, 2, result.Errors[1].Index)
	require.Equal(t, "102", result.Errors[1].Identifier)

	stored, err := f.svc.GetUnitByNumber(context.Background(), "103")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, models.UnitStatusOccupied, stored.Status)
}

func TestDeleteUnit(t *testing.T) {
	f := newUnitFixture()
	unit := f.addUnit(&models.Unit{UnitNumber: "204", Status: models.UnitStatusOccupied})

	require.NoError(t, f.svc.DeleteUnit(context.Background(), unit.ID))

	got, err := f.svc.GetUnit(context.Background(), unit.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}
