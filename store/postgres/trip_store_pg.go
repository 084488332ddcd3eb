package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	internal_store "github.com/TrekLedger/trek-ledger-backend/internal/store"
	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

const tripColumns = `id, user_id, name, destination, status, reserve_percentage,
       trip_reserve_balance, operating_account, business_account,
       total_advance_received, released_profit, estimated_cost,
       start_date, end_date, created_at, updated_at`

var _ internal_store.TripStore = (*pgTripStore)(nil)

type pgTripStore struct {
	db DB
}

// NewPgTripStore creates a new PostgreSQL trip store.
func NewPgTripStore(db DB) internal_store.TripStore {
	return &pgTripStore{db: db}
}

func (s *pgTripStore) CreateTrip(ctx context.Context, trip types.Trip) (*types.Trip, error) {
	log := logger.GetLogger()

	query := `
        INSERT INTO trips (
            user_id, name, destination, status, reserve_percentage,
            trip_reserve_balance, operating_account, business_account,
            total_advance_received, released_profit, estimated_cost,
            start_date, end_date
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id, created_at, updated_at`

	err := s.db.QueryRow(ctx, query,
		trip.UserID,
		trip.Name,
		trip.Destination,
		string(trip.Status),
		trip.ReservePercentage,
		trip.TripReserveBalance,
		trip.OperatingAccount,
		trip.BusinessAccount,
		trip.TotalAdvanceReceived,
		trip.ReleasedProfit,
		trip.EstimatedCost,
		trip.StartDate,
		trip.EndDate,
	).Scan(&trip.ID, &trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		log.Errorw("Failed to create trip", "error", err)
		return nil, apperrors.NewDatabaseError(err)
	}

	return &trip, nil
}

func (s *pgTripStore) GetTrip(ctx context.Context, userID, tripID string) (*types.Trip, error) {
	query := fmt.Sprintf(`SELECT %s FROM trips WHERE id = $1 AND user_id = $2`, tripColumns)

	trip, err := scanTrip(s.db.QueryRow(ctx, query, tripID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return trip, nil
}

func (s *pgTripStore) ListTrips(ctx context.Context, userID string) ([]types.Trip, error) {
	query := fmt.Sprintf(`SELECT %s FROM trips WHERE user_id = $1 ORDER BY created_at DESC`, tripColumns)

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	defer rows.Close()

	var trips []types.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		trips = append(trips, *trip)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return trips, nil
}

func (s *pgTripStore) UpdateTrip(ctx context.Context, userID, tripID string, update types.TripUpdate) (*types.Trip, error) {
	var setFields []string
	var args []interface{}
	argPos := 1

	addField := func(name string, value interface{}) {
		setFields = append(setFields, fmt.Sprintf("%s = $%d", name, argPos))
		args = append(args, value)
		argPos++
	}

	if update.Name != nil {
		addField("name", *update.Name)
	}
	if update.Destination != nil {
		addField("destination", *update.Destination)
	}
	if update.Status != nil {
		addField("status", string(*update.Status))
	}
	if update.EstimatedCost != nil {
		addField("estimated_cost", *update.EstimatedCost)
	}
	if update.StartDate != nil {
		addField("start_date", *update.StartDate)
	}
	if update.EndDate != nil {
		addField("end_date", *update.EndDate)
	}

	if len(setFields) == 0 {
		trip, err := s.GetTrip(ctx, userID, tripID)
		if err != nil {
			return nil, err
		}
		if trip == nil {
			return nil, apperrors.TripNotFound(tripID)
		}
		return trip, nil
	}

	setFields = append(setFields, "updated_at = NOW()")
	query := fmt.Sprintf(`
        UPDATE trips SET %s
        WHERE id = $%d AND user_id = $%d
        RETURNING %s`,
		strings.Join(setFields, ", "), argPos, argPos+1, tripColumns)
	args = append(args, tripID, userID)

	// Status changes validate the transition against the locked row, so a
	// cancel racing a concurrent completion cannot overwrite the terminal
	// state. Metadata-only updates skip the transaction.
	if update.Status != nil {
		var trip *types.Trip
		err := WithTx(ctx, s.db, func(tx pgx.Tx) error {
			locked, err := lockTrip(ctx, tx, userID, tripID)
			if err != nil {
				return err
			}
			if !locked.Status.IsValidTransition(*update.Status) {
				return apperrors.InvalidStatusTransition(locked.Status.String(), update.Status.String())
			}
			trip, err = scanTrip(tx.QueryRow(ctx, query, args...))
			if err != nil {
				return apperrors.NewDatabaseError(err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return trip, nil
	}

	trip, err := scanTrip(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.TripNotFound(tripID)
		}
		logger.GetLogger().Errorw("Failed to update trip", "tripId", tripID, "error", err)
		return nil, apperrors.NewDatabaseError(err)
	}
	return trip, nil
}

// CompleteTrip locks the trip row, runs the completion plan against it, and
// commits the trip update together with the completion log. The unique index
// on trip_completion_logs.trip_id backstops the one-log-per-trip invariant.
func (s *pgTripStore) CompleteTrip(ctx context.Context, userID, tripID string, plan internal_store.CompletionPlanFn) (*types.CompletionResult, error) {
	log := logger.GetLogger()
	var result types.CompletionResult

	err := WithTx(ctx, s.db, func(tx pgx.Tx) error {
		trip, err := lockTrip(ctx, tx, userID, tripID)
		if err != nil {
			return err
		}

		var totalExpenses float64
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE trip_id = $1`,
			tripID,
		).Scan(&totalExpenses)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}

		completionLog, err := plan(trip, trip.TotalAdvanceReceived, totalExpenses)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
            UPDATE trips
            SET status = $1, released_profit = $2,
                trip_reserve_balance = 0, operating_account = 0,
                updated_at = NOW()
            WHERE id = $3`,
			string(types.TripStatusCompleted),
			completionLog.FinalProfit,
			tripID,
		)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}

		err = tx.QueryRow(ctx, `
            INSERT INTO trip_completion_logs (
                user_id, trip_id, final_profit, reserve_released,
                trip_spend_released, business_account_released,
                total_advances, total_expenses, completed_at
            )
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
            RETURNING id`,
			userID,
			tripID,
			completionLog.FinalProfit,
			completionLog.ReserveReleased,
			completionLog.TripSpendReleased,
			completionLog.BusinessAccountReleased,
			completionLog.TotalAdvances,
			completionLog.TotalExpenses,
			completionLog.CompletedAt,
		).Scan(&completionLog.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.NewConflictError(
					"Trip already completed",
					"a completion log already exists for this trip",
				)
			}
			return apperrors.NewDatabaseError(err)
		}

		var totalProfit float64
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(released_profit), 0) FROM trips WHERE user_id = $1 AND status = $2`,
			userID, string(types.TripStatusCompleted),
		).Scan(&totalProfit)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}

		trip.Status = types.TripStatusCompleted
		trip.ReleasedProfit = completionLog.FinalProfit
		trip.TripReserveBalance = 0
		trip.OperatingAccount = 0

		result = types.CompletionResult{
			Log:               *completionLog,
			Trip:              *trip,
			TotalProfitWallet: totalProfit,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Infow("Completed trip", "tripId", tripID, "finalProfit", result.Log.FinalProfit)
	return &result, nil
}

// lockTrip loads a trip row FOR UPDATE so the caller's plan validates against
// state no concurrent mutation can change before commit.
func lockTrip(ctx context.Context, tx pgx.Tx, userID, tripID string) (*types.Trip, error) {
	query := fmt.Sprintf(`SELECT %s FROM trips WHERE id = $1 AND user_id = $2 FOR UPDATE`, tripColumns)

	trip, err := scanTrip(tx.QueryRow(ctx, query, tripID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.TripNotFound(tripID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return trip, nil
}

func scanTrip(row pgx.Row) (*types.Trip, error) {
	var trip types.Trip
	err := row.Scan(
		&trip.ID,
		&trip.UserID,
		&trip.Name,
		&trip.Destination,
		&trip.Status,
		&trip.ReservePercentage,
		&trip.TripReserveBalance,
		&trip.OperatingAccount,
		&trip.BusinessAccount,
		&trip.TotalAdvanceReceived,
		&trip.ReleasedProfit,
		&trip.EstimatedCost,
		&trip.StartDate,
		&trip.EndDate,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
