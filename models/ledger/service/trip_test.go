package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrekLedger/trek-ledger-backend/types"
)

func TestCreateTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with zeroed wallets and upcoming status", func(t *testing.T) {
		store := newFakeStore()
		svc := NewTripService(store, store)

		created, err := svc.CreateTrip(ctx, &types.Trip{
			UserID:            "user-1",
			Name:              "Ladakh",
			ReservePercentage: 0.55,
			TripReserveBalance: 999, // must be ignored
		})
		require.NoError(t, err)
		assert.Equal(t, types.TripStatusUpcoming, created.Status)
		assert.Equal(t, 0.55, created.ReservePercentage)
		assert.Equal(t, 0.0, created.TripReserveBalance)
		assert.Equal(t, 0.0, created.OperatingAccount)
		assert.Equal(t, 0.0, created.BusinessAccount)
	})

	t.Run("defaults the reserve percentage from settings", func(t *testing.T) {
		store := newFakeStore()
		store.settings.TripReservePercentage = 0.45
		svc := NewTripService(store, store)

		created, err := svc.CreateTrip(ctx, &types.Trip{UserID: "user-1", Name: "Spiti"})
		require.NoError(t, err)
		assert.Equal(t, 0.45, created.ReservePercentage)
	})

	t.Run("rejects a missing name and out-of-range percentages", func(t *testing.T) {
		store := newFakeStore()
		svc := NewTripService(store, store)

		_, err := svc.CreateTrip(ctx, &types.Trip{UserID: "user-1"})
		require.Error(t, err)

		_, err = svc.CreateTrip(ctx, &types.Trip{UserID: "user-1", Name: "x", ReservePercentage: 1.5})
		require.Error(t, err)
	})
}

func TestUpdateTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("allows valid status transitions", func(t *testing.T) {
		store := newFakeStore()
		trip := store.addTrip(types.Trip{UserID: "user-1", Name: "Ladakh", Status: types.TripStatusUpcoming})
		svc := NewTripService(store, store)

		status := types.TripStatusInProgress
		updated, err := svc.UpdateTrip(ctx, "user-1", trip.ID, types.TripUpdate{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, types.TripStatusInProgress, updated.Status)
	})

	t.Run("completion is not reachable through update", func(t *testing.T) {
		store := newFakeStore()
		trip := store.addTrip(types.Trip{UserID: "user-1", Status: types.TripStatusInProgress})
		svc := NewTripService(store, store)

		status := types.TripStatusCompleted
		_, err := svc.UpdateTrip(ctx, "user-1", trip.ID, types.TripUpdate{Status: &status})
		require.Error(t, err)
		assert.Equal(t, types.TripStatusInProgress, store.trips[trip.ID].Status)
	})

	t.Run("terminal trips reject status changes", func(t *testing.T) {
		store := newFakeStore()
		trip := store.addTrip(types.Trip{UserID: "user-1", Status: types.TripStatusCancelled})
		svc := NewTripService(store, store)

		status := types.TripStatusInProgress
		_, err := svc.UpdateTrip(ctx, "user-1", trip.ID, types.TripUpdate{Status: &status})
		require.Error(t, err)
	})

	t.Run("metadata updates pass through", func(t *testing.T) {
		store := newFakeStore()
		trip := store.addTrip(types.Trip{UserID: "user-1", Name: "Old", Status: types.TripStatusUpcoming})
		svc := NewTripService(store, store)

		name := "New"
		updated, err := svc.UpdateTrip(ctx, "user-1", trip.ID, types.TripUpdate{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "New", updated.Name)
	})
}

func TestSettingsService(t *testing.T) {
	ctx := context.Background()

	t.Run("update validates the three-way sum", func(t *testing.T) {
		store := newFakeStore()
		svc := NewSettingsService(store)

		reserve := 0.50
		_, err := svc.Update(ctx, "user-1", types.SettingsUpdate{TripReservePercentage: &reserve})
		require.Error(t, err) // 0.50 + 0.20 + 0.20 != 1

		early := 0.30
		updated, err := svc.Update(ctx, "user-1", types.SettingsUpdate{
			TripReservePercentage: &reserve,
			EarlyUnlockPercentage: &early,
		})
		require.NoError(t, err) // 0.50 + 0.30 + 0.20 == 1
		assert.Equal(t, 0.50, updated.TripReservePercentage)
	})

	t.Run("rejects out-of-range values", func(t *testing.T) {
		svc := NewSettingsService(newFakeStore())

		bad := -0.1
		_, err := svc.Update(ctx, "user-1", types.SettingsUpdate{TripReservePercentage: &bad})
		require.Error(t, err)

		negative := -100.0
		_, err = svc.Update(ctx, "user-1", types.SettingsUpdate{BankBalance: &negative})
		require.Error(t, err)
	})

	t.Run("bank balance updates skip the sum check", func(t *testing.T) {
		svc := NewSettingsService(newFakeStore())

		balance := 50000.0
		updated, err := svc.Update(ctx, "user-1", types.SettingsUpdate{BankBalance: &balance})
		require.NoError(t, err)
		assert.Equal(t, 50000.0, updated.BankBalance)
	})
}

func TestDashboardSummary(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.snapshot = &types.LedgerSnapshot{
		AdvanceTotal:          10000,
		AdvanceBusinessTotal:  2000,
		ReleasedProfitTotal:   7500,
		WithdrawalsTotal:      500,
		TripExpensesTotal:     2500,
		BusinessExpensesTotal: 500,
		ActiveOperatingTotal:  1000,
		ActiveReserveTotal:    4000,
	}
	svc := NewDashboardService(store)

	summary, err := svc.Summary(ctx, "user-1")
	require.NoError(t, err)

	// 30/70 view on total advances and combined expenses.
	assert.Equal(t, 10000.0, summary.Separation.Revenue)
	assert.Equal(t, 3000.0, summary.Separation.ProfitPool)
	assert.Equal(t, 7000.0, summary.Separation.OperatingPool)
	assert.Equal(t, 4000.0, summary.Separation.OperatingAccount) // 7000 - 3000
	assert.Equal(t, 2500.0, summary.Separation.WithdrawableProfit)

	// Five-bucket view from the same snapshot.
	assert.Equal(t, 7000.0, summary.Buckets.ProfitWithdrawable)
	assert.Equal(t, 1500.0, summary.Buckets.BusinessAccount)
	assert.Equal(t, 1000.0, summary.Buckets.TripBalances)
	assert.Equal(t, 4000.0, summary.Buckets.TripReserves)
}
