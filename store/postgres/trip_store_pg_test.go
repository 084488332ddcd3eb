package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	internal_store "github.com/TrekLedger/trek-ledger-backend/internal/store"
	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

func init() {
	logger.IsTest = true
}

func createMockPool(t *testing.T) (pgxmock.PgxPoolIface, func()) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return mock, func() { mock.Close() }
}

func tripRows(trip types.Trip) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "name", "destination", "status", "reserve_percentage",
		"trip_reserve_balance", "operating_account", "business_account",
		"total_advance_received", "released_profit", "estimated_cost",
		"start_date", "end_date", "created_at", "updated_at",
	}).AddRow(
		trip.ID, trip.UserID, trip.Name, trip.Destination, trip.Status,
		trip.ReservePercentage, trip.TripReserveBalance, trip.OperatingAccount,
		trip.BusinessAccount, trip.TotalAdvanceReceived, trip.ReleasedProfit,
		trip.EstimatedCost, trip.StartDate, trip.EndDate,
		trip.CreatedAt, trip.UpdatedAt,
	)
}

func TestPgTripStoreCreateTrip(t *testing.T) {
	mock, cleanup := createMockPool(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO trips`).
		WithArgs("user-1", "Ladakh", "Leh", "upcoming", 0.60,
			0.0, 0.0, 0.0, 0.0, 0.0, 5000.0, (*time.Time)(nil), (*time.Time)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("trip-1", now, now))

	store := NewPgTripStore(mock)
	created, err := store.CreateTrip(context.Background(), types.Trip{
		UserID:            "user-1",
		Name:              "Ladakh",
		Destination:       "Leh",
		Status:            types.TripStatusUpcoming,
		ReservePercentage: 0.60,
		EstimatedCost:     5000,
	})
	require.NoError(t, err)
	assert.Equal(t, "trip-1", created.ID)
	assert.Equal(t, now, created.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgTripStoreGetTrip(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock, cleanup := createMockPool(t)
		defer cleanup()

		trip := types.Trip{
			ID: "trip-1", UserID: "user-1", Name: "Ladakh",
			Status: types.TripStatusInProgress, ReservePercentage: 0.6,
			TripReserveBalance: 6000, OperatingAccount: 2000, BusinessAccount: 2000,
			TotalAdvanceReceived: 10000,
			CreatedAt:            time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		}
		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1 AND user_id = \$2`).
			WithArgs("trip-1", "user-1").
			WillReturnRows(tripRows(trip))

		store := NewPgTripStore(mock)
		got, err := store.GetTrip(context.Background(), "user-1", "trip-1")
		require.NoError(t, err)
		assert.Equal(t, 6000.0, got.TripReserveBalance)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing returns nil without error", func(t *testing.T) {
		mock, cleanup := createMockPool(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1 AND user_id = \$2`).
			WithArgs("missing", "user-1").
			WillReturnError(errNoRows())

		store := NewPgTripStore(mock)
		got, err := store.GetTrip(context.Background(), "user-1", "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestPgTripStoreUpdateTrip(t *testing.T) {
	ctx := context.Background()
	cancelled := types.TripStatusCancelled

	t.Run("status change validates against the locked row", func(t *testing.T) {
		mock, cleanup := createMockPool(t)
		defer cleanup()

		trip := types.Trip{
			ID: "trip-1", UserID: "user-1", Name: "Ladakh",
			Status: types.TripStatusInProgress,
		}
		updated := trip
		updated.Status = types.TripStatusCancelled

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs("trip-1", "user-1").
			WillReturnRows(tripRows(trip))
		mock.ExpectQuery(`UPDATE trips SET status = \$1`).
			WithArgs("cancelled", "trip-1", "user-1").
			WillReturnRows(tripRows(updated))
		mock.ExpectCommit()

		store := NewPgTripStore(mock)
		got, err := store.UpdateTrip(ctx, "user-1", "trip-1", types.TripUpdate{Status: &cancelled})
		require.NoError(t, err)
		assert.Equal(t, types.TripStatusCancelled, got.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cancel loses the race against a concurrent completion", func(t *testing.T) {
		mock, cleanup := createMockPool(t)
		defer cleanup()

		// By the time the lock is granted another transaction has completed
		// the trip; the stale cancel must not overwrite the terminal state.
		trip := types.Trip{
			ID: "trip-1", UserID: "user-1", Name: "Ladakh",
			Status: types.TripStatusCompleted, ReleasedProfit: 7500,
		}

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs("trip-1", "user-1").
			WillReturnRows(tripRows(trip))
		mock.ExpectRollback()

		store := NewPgTripStore(mock)
		_, err := store.UpdateTrip(ctx, "user-1", "trip-1", types.TripUpdate{Status: &cancelled})
		require.Error(t, err)
		appErr, ok := err.(*apperrors.AppError)
		require.True(t, ok)
		assert.Equal(t, apperrors.InvalidStatusTransitionError, appErr.Type)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("metadata update skips the transaction", func(t *testing.T) {
		mock, cleanup := createMockPool(t)
		defer cleanup()

		name := "Ladakh Extended"
		updated := types.Trip{
			ID: "trip-1", UserID: "user-1", Name: name,
			Status: types.TripStatusInProgress,
		}

		mock.ExpectQuery(`UPDATE trips SET name = \$1`).
			WithArgs(name, "trip-1", "user-1").
			WillReturnRows(tripRows(updated))

		store := NewPgTripStore(mock)
		got, err := store.UpdateTrip(ctx, "user-1", "trip-1", types.TripUpdate{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, name, got.Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgTripStoreCompleteTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("commits trip update and completion log together", func(t *testing.T) {
		mock, cleanup := createMockPool(t)
		defer cleanup()

		trip := types.Trip{
			ID: "trip-1", UserID: "user-1", Name: "Ladakh",
			Status:             types.TripStatusInProgress,
			TripReserveBalance: 6000, OperatingAccount: 1500,
			TotalAdvanceReceived: 10000,
		}

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs("trip-1", "user-1").
			WillReturnRows(tripRows(trip))
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM expenses`).
			WithArgs("trip-1").
			WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(2500.0))
		mock.ExpectExec(`UPDATE trips`).
			WithArgs("completed", 7500.0, "trip-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectQuery(`INSERT INTO trip_completion_logs`).
			WithArgs("user-1", "trip-1", 7500.0, 6000.0, 1500.0, 0.0, 10000.0, 2500.0, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("log-1"))
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(released_profit\), 0\) FROM trips`).
			WithArgs("user-1", "completed").
			WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(7500.0))
		mock.ExpectCommit()

		store := NewPgTripStore(mock)
		result, err := store.CompleteTrip(ctx, "user-1", "trip-1", func(trip *types.Trip, totalAdvances, totalExpenses float64) (*types.TripCompletionLog, error) {
			assert.Equal(t, 10000.0, totalAdvances)
			assert.Equal(t, 2500.0, totalExpenses)
			return &types.TripCompletionLog{
				UserID:            "user-1",
				TripID:            "trip-1",
				FinalProfit:       7500,
				ReserveReleased:   6000,
				TripSpendReleased: 1500,
				TotalAdvances:     totalAdvances,
				TotalExpenses:     totalExpenses,
				CompletedAt:       time.Now().UTC(),
			}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "log-1", result.Log.ID)
		assert.Equal(t, 7500.0, result.TotalProfitWallet)
		assert.Equal(t, types.TripStatusCompleted, result.Trip.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("plan error rolls the transaction back", func(t *testing.T) {
		mock, cleanup := createMockPool(t)
		defer cleanup()

		trip := types.Trip{
			ID: "trip-1", UserID: "user-1",
			Status: types.TripStatusCompleted,
		}

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs("trip-1", "user-1").
			WillReturnRows(tripRows(trip))
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM expenses`).
			WithArgs("trip-1").
			WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(0.0))
		mock.ExpectRollback()

		planErr := apperrors.New(apperrors.InvalidStatusTransitionError, "Trip already completed", "")

		store := NewPgTripStore(mock)
		_, err := store.CompleteTrip(ctx, "user-1", "trip-1", func(*types.Trip, float64, float64) (*types.TripCompletionLog, error) {
			return nil, planErr
		})
		require.ErrorIs(t, err, planErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing trip aborts before the plan runs", func(t *testing.T) {
		mock, cleanup := createMockPool(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM trips WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs("missing", "user-1").
			WillReturnError(errNoRows())
		mock.ExpectRollback()

		store := NewPgTripStore(mock)
		_, err := store.CompleteTrip(ctx, "user-1", "missing", func(*types.Trip, float64, float64) (*types.TripCompletionLog, error) {
			t.Fatal("plan must not run for a missing trip")
			return nil, nil
		})
		require.Error(t, err)
		appErr, ok := err.(*apperrors.AppError)
		require.True(t, ok)
		assert.Equal(t, apperrors.TripNotFoundError, appErr.Type)
	})
}

// errNoRows is the sentinel pgx raises for empty result sets.
func errNoRows() error {
	return pgx.ErrNoRows
}

var _ internal_store.TripStore = (*pgTripStore)(nil)
