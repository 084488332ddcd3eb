package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrekLedger/trek-ledger-backend/types"
)

func TestRecordAdvance(t *testing.T) {
	ctx := context.Background()

	t.Run("splits and credits the trip wallets", func(t *testing.T) {
		store := newFakeStore()
		trip := store.addTrip(types.Trip{
			UserID:            "user-1",
			Status:            types.TripStatusUpcoming,
			ReservePercentage: 0.60,
		})
		cache := newFakeCache()
		svc := NewPaymentService(store, store, cache)

		payment, err := svc.RecordAdvance(ctx, "user-1", types.CreateAdvancePaymentParams{
			TripID: trip.ID,
			Amount: 10000,
		})
		require.NoError(t, err)

		assert.Equal(t, 6000.0, payment.TripReserveAmount)
		assert.Equal(t, 2000.0, payment.OperatingAmount)
		assert.Equal(t, 2000.0, payment.BusinessAmount)

		updated := store.trips[trip.ID]
		assert.Equal(t, 6000.0, updated.TripReserveBalance)
		assert.Equal(t, 2000.0, updated.OperatingAccount)
		assert.Equal(t, 2000.0, updated.BusinessAccount)
		assert.Equal(t, 10000.0, updated.TotalAdvanceReceived)
		assert.Equal(t, 1, cache.invalidated)
	})

	t.Run("split is frozen at payment time", func(t *testing.T) {
		store := newFakeStore()
		trip := store.addTrip(types.Trip{
			UserID:            "user-1",
			Status:            types.TripStatusUpcoming,
			ReservePercentage: 0.60,
		})
		svc := NewPaymentService(store, store, nil)

		first, err := svc.RecordAdvance(ctx, "user-1", types.CreateAdvancePaymentParams{
			TripID: trip.ID, Amount: 1000,
		})
		require.NoError(t, err)

		store.trips[trip.ID].ReservePercentage = 0.50
		second, err := svc.RecordAdvance(ctx, "user-1", types.CreateAdvancePaymentParams{
			TripID: trip.ID, Amount: 1000,
		})
		require.NoError(t, err)

		assert.Equal(t, 600.0, first.TripReserveAmount)
		assert.Equal(t, 500.0, second.TripReserveAmount)
		// The first row never changes.
		assert.Equal(t, 600.0, store.payments[0].TripReserveAmount)
	})

	t.Run("rejects advances on terminal trips", func(t *testing.T) {
		store := newFakeStore()
		trip := store.addTrip(types.Trip{
			UserID: "user-1",
			Status: types.TripStatusCompleted,
		})
		svc := NewPaymentService(store, store, nil)

		_, err := svc.RecordAdvance(ctx, "user-1", types.CreateAdvancePaymentParams{
			TripID: trip.ID, Amount: 500,
		})
		require.Error(t, err)
		assert.Empty(t, store.payments)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		svc := NewPaymentService(newFakeStore(), newFakeStore(), nil)
		_, err := svc.RecordAdvance(ctx, "user-1", types.CreateAdvancePaymentParams{
			TripID: "trip-1", Amount: 0,
		})
		require.Error(t, err)
	})
}

func TestPreviewSplit(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	trip := store.addTrip(types.Trip{
		UserID:            "user-1",
		Status:            types.TripStatusUpcoming,
		ReservePercentage: 0.60,
	})
	svc := NewPaymentService(store, store, nil)

	split, err := svc.PreviewSplit(ctx, "user-1", trip.ID, 10000)
	require.NoError(t, err)
	assert.Equal(t, 6000.0, split.TripReserveAmount)
	assert.Equal(t, 2000.0, split.OperatingAmount)
	assert.Equal(t, 2000.0, split.BusinessAmount)

	// Preview and persistence use the same calculator.
	payment, err := svc.RecordAdvance(ctx, "user-1", types.CreateAdvancePaymentParams{
		TripID: trip.ID, Amount: 10000,
	})
	require.NoError(t, err)
	assert.Equal(t, split.TripReserveAmount, payment.TripReserveAmount)
	assert.Equal(t, split.OperatingAmount, payment.OperatingAmount)
	assert.Equal(t, split.BusinessAmount, payment.BusinessAmount)

	_, err = svc.PreviewSplit(ctx, "user-1", "missing", 100)
	require.Error(t, err)
}

func TestWithdrawals(t *testing.T) {
	ctx := context.Background()

	t.Run("records within withdrawable profit", func(t *testing.T) {
		store := newFakeStore()
		store.snapshot = &types.LedgerSnapshot{ReleasedProfitTotal: 5000}
		cache := newFakeCache()
		svc := NewWithdrawalService(store, cache)

		withdrawal, err := svc.Record(ctx, "user-1", types.CreateWithdrawalParams{Amount: 3000})
		require.NoError(t, err)
		assert.Equal(t, 3000.0, withdrawal.Amount)
		assert.Equal(t, 1, cache.invalidated)
	})

	t.Run("rejects past withdrawable profit", func(t *testing.T) {
		store := newFakeStore()
		store.snapshot = &types.LedgerSnapshot{
			ReleasedProfitTotal: 5000,
			WithdrawalsTotal:    4500,
		}
		svc := NewWithdrawalService(store, nil)

		_, err := svc.Record(ctx, "user-1", types.CreateWithdrawalParams{Amount: 1000})
		require.Error(t, err)
		assert.Empty(t, store.withdrawals)
	})

	t.Run("delete removes without re-validation", func(t *testing.T) {
		store := newFakeStore()
		store.snapshot = &types.LedgerSnapshot{ReleasedProfitTotal: 1000}
		svc := NewWithdrawalService(store, nil)

		withdrawal, err := svc.Record(ctx, "user-1", types.CreateWithdrawalParams{Amount: 800})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, "user-1", withdrawal.ID))
		assert.Empty(t, store.withdrawals)
	})
}
