package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ips-ux/maintenance-manager/internal/dtos"
	"github.com/ips-ux/maintenance-manager/internal/models"
	"github.com/ips-ux/maintenance-manager/internal/repositories"
	"github.com/ips-ux/maintenance-manager/internal/utils"
)

func newVendorFixture() (*fakeVendorRepo, *VendorService) {
	repo := newFakeVendorRepo()
	return repo, NewVendorService(repo)
}

func createVendor(t *testing.T, svc *VendorService) *models.Vendor {
	t.Helper()
	vendor, err := svc.CreateVendor(context.Background(), dtos.CreateVendorRequest{
		VendorName: "Ace Plumbing",
		Category:   "Plumbing",
		Phone:      "+15551234567",
	})
	require.NoError(t, err)
	return vendor
}

func TestCreateVendorStartsActive(t *testing.T) {
	_, svc := newVendorFixture()

	vendor := createVendor(t, svc)
	require.True(t, vendor.Active)
	require.Equal(t, 0.0, vendor.Rating, "new vendors start unrated")
	require.Equal(t, 0, vendor.TotalJobsCompleted)
}

func TestSetRatingBounds(t *testing.T) {
	_, svc := newVendorFixture()
	vendor := createVendor(t, svc)
	ctx := context.Background()

	_, err := svc.SetRating(ctx, vendor.ID, 0.5)
	require.ErrorIs(t, err, utils.ErrInvalidRating)

	_, err = svc.SetRating(ctx, vendor.ID, 5.1)
	require.ErrorIs(t, err, utils.ErrInvalidRating)

	updated, err := svc.SetRating(ctx, vendor.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 1.0, updated.Rating)

	updated, err = svc.SetRating(ctx, vendor.ID, 5)
	require.NoError(t, err)
	require.Equal(t, 5.0, updated.Rating)
}

func TestSetRatingRoundsToOneDecimal(t *testing.T) {
	_, svc := newVendorFixture()
	vendor := createVendor(t, svc)

	updated, err := svc.SetRating(context.Background(), vendor.ID, 4.46)
	require.NoError(t, err)
	require.Equal(t, 4.5, updated.Rating)

	updated, err = svc.SetRating(context.Background(), vendor.ID, 3.24)
	require.NoError(t, err)
	require.Equal(t, 3.2, updated.Rating)
}

func TestSetRatingUnknownVendor(t *testing.T) {
	_, svc := newVendorFixture()

	_, err := svc.SetRating(context.Background(), uuid.New(), 4)
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestRecordJobCompletion(t *testing.T) {
	_, svc := newVendorFixture()
	vendor := createVendor(t, svc)
	ctx := context.Background()

	updated, err := svc.RecordJobCompletion(ctx, vendor.ID)
	require.NoError(t, err)
	require.Equal(t, 1, updated.TotalJobsCompleted)
	require.NotNil(t, updated.LastServiceDate)

	updated, err = svc.RecordJobCompletion(ctx, vendor.ID)
	require.NoError(t, err)
	require.Equal(t, 2, updated.TotalJobsCompleted)
}

func TestUpdateVendorMerge(t *testing.T) {
	_, svc := newVendorFixture()
	vendor := createVendor(t, svc)

	updated, err := svc.UpdateVendor(context.Background(), vendor.ID, dtos.UpdateVendorRequest{
		PreferredVendor: utils.Ptr(true),
		Active:          utils.Ptr(false),
	})
	require.NoError(t, err)
	require.True(t, updated.PreferredVendor)
	require.False(t, updated.Active)
	require.Equal(t, "Ace Plumbing", updated.VendorName, "untouched fields survive the merge")
}

func TestUpdateVendorUnknownID(t *testing.T) {
	_, svc := newVendorFixture()

	_, err := svc.UpdateVendor(context.Background(), uuid.New(), dtos.UpdateVendorRequest{
		Notes: utils.Ptr("call first"),
	})
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestCreateBulkVendorsRejectsBatchDuplicates(t *testing.T) {
	repo, svc := newVendorFixture()

	result, err := svc.CreateBulkVendors(context.Background(), dtos.BulkCreateVendorsRequest{
		Vendors: []dtos.CreateVendorRequest{
			{VendorName: "Ace Plumbing", Category: "Plumbing"},
			{VendorName: "Ace Plumbing", Category: "Plumbing"},
			{VendorName: "Sparks Electric", Category: "Electrical"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Created)
	require.Len(t, result.Errors, 1)
	require.Equal(t, 1, result.Errors[0].Index)
	require.Equal(t, "Ace Plumbing", result.Errors[0].Identifier)
	require.Len(t, repo.vendors, 2)
}

func TestVendorStatistics(t *testing.T) {
	_, svc := newVendorFixture()
	ctx := context.Background()

	for _, in := range []dtos.CreateVendorRequest{
		{VendorName: "Ace Plumbing", Category: "Plumbing"},
		{VendorName: "Sparks Electric", Category: "Electrical"},
		{VendorName: "Budget Cleaners", Category: "Cleaning"},
	} {
		_, err := svc.CreateVendor(ctx, in)
		require.NoError(t, err)
	}
	vendors, err := svc.ListVendors(ctx, repositories.VendorQuery{})
	require.NoError(t, err)
	_, err = svc.SetRating(ctx, vendors[0].ID, 4.0)
	require.NoError(t, err)
	_, err = svc.SetRating(ctx, vendors[1].ID, 3.5)
	require.NoError(t, err)
	_, err = svc.RecordJobCompletion(ctx, vendors[2].ID)
	require.NoError(t, err)

	stats, err := svc.GetStatistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalVendors)
	require.Equal(t, 3, stats.ActiveVendors)
	require.Equal(t, 1, stats.ByCategory["Plumbing"])
	require.Equal(t, 1, stats.ByCategory["Electrical"])
	require.InDelta(t, 3.8, stats.AverageRating, 0.0001, "unrated vendors stay out of the average")
	require.Equal(t, 1, stats.TotalJobsCompleted)
}
