package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	internal_store "github.com/TrekLedger/trek-ledger-backend/internal/store"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

func TestPgLedgerStoreInsertAdvancePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts the row and credits the trip wallets", func(t *testing.T) {
		mock, cleanup := createMockPool(t)
		defer cleanup()

		trip := types.Trip{
			ID: "trip-1", UserID: "user-1",
			Status: types.TripStatusUpcoming, ReservePercentage: 0.60,
		}
		now := time.Now().UTC()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs("trip-1", "user-1").
			WillReturnRows(tripRows(trip))
		mock.ExpectQuery(`INSERT INTO advance_payments`).
			WithArgs("user-1", "trip-1", pgxmock.AnyArg(), 10000.0, 6000.0, 2000.0, 2000.0, "", pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("payment-1", now))
		mock.ExpectExec(`UPDATE trips`).
			WithArgs(6000.0, 2000.0, 2000.0, 10000.0, "trip-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		store := NewPgLedgerStore(mock)
		payment, err := store.InsertAdvancePayment(ctx, "user-1", "trip-1", func(trip *types.Trip) (*types.AdvancePayment, error) {
			assert.Equal(t, 0.60, trip.ReservePercentage)
			return &types.AdvancePayment{
				UserID:            "user-1",
				TripID:            "trip-1",
				Amount:            10000,
				TripReserveAmount: 6000,
				OperatingAmount:   2000,
				BusinessAmount:    2000,
				PaidAt:            now,
			}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "payment-1", payment.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("plan error leaves no rows behind", func(t *testing.T) {
		mock, cleanup := createMockPool(t)
		defer cleanup()

		trip := types.Trip{ID: "trip-1", UserID: "user-1", Status: types.TripStatusCompleted}

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs("trip-1", "user-1").
			WillReturnRows(tripRows(trip))
		mock.ExpectRollback()

		store := NewPgLedgerStore(mock)
		_, err := store.InsertAdvancePayment(ctx, "user-1", "trip-1", func(trip *types.Trip) (*types.AdvancePayment, error) {
			return nil, apperrors.ValidationFailed("trip is closed", "")
		})
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgLedgerStoreInsertExpense(t *testing.T) {
	ctx := context.Background()

	t.Run("guard sees the in-transaction expense total", func(t *testing.T) {
		mock, cleanup := createMockPool(t)
		defer cleanup()

		trip := types.Trip{
			ID: "trip-1", UserID: "user-1",
			Status: types.TripStatusInProgress, TripReserveBalance: 6000,
		}
		now := time.Now().UTC()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs("trip-1", "user-1").
			WillReturnRows(tripRows(trip))
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM expenses`).
			WithArgs("trip-1").
			WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(1200.0))
		mock.ExpectQuery(`INSERT INTO expenses`).
			WithArgs("user-1", "trip-1", 800.0, "transport", "", pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("expense-1", now))
		mock.ExpectExec(`UPDATE trips`).
			WithArgs(800.0, "trip-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		var guardTotal float64
		store := NewPgLedgerStore(mock)
		expense, err := store.InsertExpense(ctx, types.Expense{
			UserID: "user-1", TripID: "trip-1", Amount: 800, Category: "transport",
			SpentAt: now,
		}, func(trip *types.Trip, existingTotal float64) error {
			guardTotal = existingTotal
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1200.0, guardTotal)
		assert.Equal(t, "expense-1", expense.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("guard veto aborts the insert", func(t *testing.T) {
		mock, cleanup := createMockPool(t)
		defer cleanup()

		trip := types.Trip{ID: "trip-1", UserID: "user-1", Status: types.TripStatusInProgress}

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs("trip-1", "user-1").
			WillReturnRows(tripRows(trip))
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM expenses`).
			WithArgs("trip-1").
			WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(0.0))
		mock.ExpectRollback()

		store := NewPgLedgerStore(mock)
		_, err := store.InsertExpense(ctx, types.Expense{
			UserID: "user-1", TripID: "trip-1", Amount: 800, Category: "transport",
		}, func(*types.Trip, float64) error {
			return apperrors.ReserveShortfall("Expense exceeds the trip's available reserve", nil)
		})
		require.Error(t, err)
		appErr, ok := err.(*apperrors.AppError)
		require.True(t, ok)
		assert.True(t, appErr.Warning)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgLedgerStoreExecuteWalletTransfer(t *testing.T) {
	mock, cleanup := createMockPool(t)
	defer cleanup()

	trip := types.Trip{
		ID: "trip-1", UserID: "user-1",
		Status:             types.TripStatusInProgress,
		TripReserveBalance: 6000, OperatingAccount: 2000, BusinessAccount: 2000,
	}
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
		WithArgs("trip-1", "user-1").
		WillReturnRows(tripRows(trip))
	mock.ExpectQuery(`INSERT INTO wallet_transfers`).
		WithArgs("user-1", "trip-1", "trip_reserve", "trip_balance", 500.0,
			"borrowed_from_reserve", -500.0, "note").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("wt-1", now))
	mock.ExpectExec(`UPDATE trips`).
		WithArgs(5500.0, 2500.0, 2000.0, "trip-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	store := NewPgLedgerStore(mock)
	transfer, err := store.ExecuteWalletTransfer(context.Background(), "user-1", "trip-1", func(trip *types.Trip) (*internal_store.WalletTransferPlan, error) {
		return &internal_store.WalletTransferPlan{
			Transfer: types.WalletTransfer{
				UserID: "user-1", TripID: "trip-1",
				FromWallet: types.WalletTripReserve, ToWallet: types.WalletTripBalance,
				Amount: 500, ImpactType: types.ImpactBorrowedFromReserve,
				ProfitChange: -500, Note: "note",
			},
			NewReserve:   5500,
			NewOperating: 2500,
			NewBusiness:  2000,
		}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "wt-1", transfer.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgLedgerStoreDeleteWithdrawal(t *testing.T) {
	mock, cleanup := createMockPool(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM withdrawals`).
		WithArgs("w-1", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	store := NewPgLedgerStore(mock)
	err := store.DeleteWithdrawal(context.Background(), "user-1", "w-1")
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.NotFoundError, appErr.Type)
}
