package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	internal_store "github.com/TrekLedger/trek-ledger-backend/internal/store"
	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

var _ internal_store.LedgerStore = (*pgLedgerStore)(nil)

type pgLedgerStore struct {
	db DB
}

// NewPgLedgerStore creates a new PostgreSQL ledger store.
func NewPgLedgerStore(db DB) internal_store.LedgerStore {
	return &pgLedgerStore{db: db}
}

func (s *pgLedgerStore) InsertAdvancePayment(ctx context.Context, userID, tripID string, plan internal_store.AdvancePaymentPlanFn) (*types.AdvancePayment, error) {
	var payment *types.AdvancePayment

	err := WithTx(ctx, s.db, func(tx pgx.Tx) error {
		trip, err := lockTrip(ctx, tx, userID, tripID)
		if err != nil {
			return err
		}

		payment, err = plan(trip)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
            INSERT INTO advance_payments (
                user_id, trip_id, participant_id, amount,
                trip_reserve_amount, operating_amount, business_amount,
                note, paid_at
            )
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
            RETURNING id, created_at`,
			payment.UserID,
			payment.TripID,
			payment.ParticipantID,
			payment.Amount,
			payment.TripReserveAmount,
			payment.OperatingAmount,
			payment.BusinessAmount,
			payment.Note,
			payment.PaidAt,
		).Scan(&payment.ID, &payment.CreatedAt)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}

		_, err = tx.Exec(ctx, `
            UPDATE trips
            SET trip_reserve_balance = trip_reserve_balance + $1,
                operating_account = operating_account + $2,
                business_account = business_account + $3,
                total_advance_received = total_advance_received + $4,
                updated_at = NOW()
            WHERE id = $5`,
			payment.TripReserveAmount,
			payment.OperatingAmount,
			payment.BusinessAmount,
			payment.Amount,
			tripID,
		)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *pgLedgerStore) ListAdvancePayments(ctx context.Context, userID string, tripID *string) ([]types.AdvancePayment, error) {
	query := `
        SELECT id, user_id, trip_id, participant_id, amount,
               trip_reserve_amount, operating_amount, business_amount,
               note, paid_at, created_at
        FROM advance_payments
        WHERE user_id = $1`
	args := []interface{}{userID}
	if tripID != nil {
		query += ` AND trip_id = $2`
		args = append(args, *tripID)
	}
	query += ` ORDER BY paid_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	defer rows.Close()

	var payments []types.AdvancePayment
	for rows.Next() {
		var p types.AdvancePayment
		err := rows.Scan(
			&p.ID, &p.UserID, &p.TripID, &p.ParticipantID, &p.Amount,
			&p.TripReserveAmount, &p.OperatingAmount, &p.BusinessAmount,
			&p.Note, &p.PaidAt, &p.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return payments, nil
}

func (s *pgLedgerStore) InsertExpense(ctx context.Context, expense types.Expense, guard internal_store.ExpenseGuardFn) (*types.Expense, error) {
	err := WithTx(ctx, s.db, func(tx pgx.Tx) error {
		trip, err := lockTrip(ctx, tx, expense.UserID, expense.TripID)
		if err != nil {
			return err
		}

		var existingTotal float64
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE trip_id = $1`,
			expense.TripID,
		).Scan(&existingTotal)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}

		if err := guard(trip, existingTotal); err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
            INSERT INTO expenses (user_id, trip_id, amount, category, description, spent_at)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, created_at`,
			expense.UserID,
			expense.TripID,
			expense.Amount,
			expense.Category,
			expense.Description,
			expense.SpentAt,
		).Scan(&expense.ID, &expense.CreatedAt)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}

		// Trip spending draws down the operating account; the reserve is never
		// touched by expenses.
		_, err = tx.Exec(ctx, `
            UPDATE trips
            SET operating_account = operating_account - $1, updated_at = NOW()
            WHERE id = $2`,
			expense.Amount,
			expense.TripID,
		)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (s *pgLedgerStore) ListExpenses(ctx context.Context, userID, tripID string) ([]types.Expense, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, trip_id, amount, category, description, spent_at, created_at
        FROM expenses
        WHERE user_id = $1 AND trip_id = $2
        ORDER BY spent_at DESC`,
		userID, tripID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	defer rows.Close()

	var expenses []types.Expense
	for rows.Next() {
		var e types.Expense
		err := rows.Scan(&e.ID, &e.UserID, &e.TripID, &e.Amount, &e.Category, &e.Description, &e.SpentAt, &e.CreatedAt)
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return expenses, nil
}

func (s *pgLedgerStore) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	return WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var tripID string
		var amount float64
		var status types.TripStatus
		err := tx.QueryRow(ctx, `
            SELECT e.trip_id, e.amount, t.status
            FROM expenses e
            JOIN trips t ON t.id = e.trip_id
            WHERE e.id = $1 AND e.user_id = $2
            FOR UPDATE OF e, t`,
			expenseID, userID,
		).Scan(&tripID, &amount, &status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NotFound("expense", expenseID)
			}
			return apperrors.NewDatabaseError(err)
		}

		if status == types.TripStatusCompleted {
			return apperrors.ValidationFailed(
				"trip is completed",
				"expenses of a completed trip cannot be deleted",
			)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, expenseID); err != nil {
			return apperrors.NewDatabaseError(err)
		}

		_, err = tx.Exec(ctx, `
            UPDATE trips
            SET operating_account = operating_account + $1, updated_at = NOW()
            WHERE id = $2`,
			amount, tripID,
		)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}
		return nil
	})
}

func (s *pgLedgerStore) InsertBusinessExpense(ctx context.Context, expense types.BusinessExpense, guard internal_store.BusinessExpenseGuardFn) (*types.BusinessExpense, error) {
	err := WithTx(ctx, s.db, func(tx pgx.Tx) error {
		settings, err := lockSettings(ctx, tx, expense.UserID)
		if err != nil {
			return err
		}

		// The reserve requirement is the estimated cost of every trip that
		// still has to run.
		var reserveRequirement float64
		err = tx.QueryRow(ctx, `
            SELECT COALESCE(SUM(estimated_cost), 0)
            FROM trips
            WHERE user_id = $1 AND status IN ($2, $3)`,
			expense.UserID,
			string(types.TripStatusUpcoming),
			string(types.TripStatusInProgress),
		).Scan(&reserveRequirement)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}

		if err := guard(settings, reserveRequirement); err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
            INSERT INTO business_expenses (user_id, amount, category, description, spent_at)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id, created_at`,
			expense.UserID,
			expense.Amount,
			expense.Category,
			expense.Description,
			expense.SpentAt,
		).Scan(&expense.ID, &expense.CreatedAt)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}

		_, err = tx.Exec(ctx, `
            UPDATE settings
            SET bank_balance = bank_balance - $1, updated_at = NOW()
            WHERE user_id = $2`,
			expense.Amount, expense.UserID,
		)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (s *pgLedgerStore) ListBusinessExpenses(ctx context.Context, userID string) ([]types.BusinessExpense, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, amount, category, description, spent_at, created_at
        FROM business_expenses
        WHERE user_id = $1
        ORDER BY spent_at DESC`,
		userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	defer rows.Close()

	var expenses []types.BusinessExpense
	for rows.Next() {
		var e types.BusinessExpense
		err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Description, &e.SpentAt, &e.CreatedAt)
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return expenses, nil
}

func (s *pgLedgerStore) InsertWithdrawal(ctx context.Context, withdrawal types.Withdrawal, guard internal_store.WithdrawalGuardFn) (*types.Withdrawal, error) {
	err := WithTx(ctx, s.db, func(tx pgx.Tx) error {
		// The settings row doubles as the per-user ledger lock: holding it
		// serializes withdrawals and global transfers against each other.
		if _, err := lockSettings(ctx, tx, withdrawal.UserID); err != nil {
			return err
		}

		snap, err := snapshot(ctx, tx, withdrawal.UserID)
		if err != nil {
			return err
		}
		if err := guard(snap); err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
            INSERT INTO withdrawals (user_id, amount, note)
            VALUES ($1, $2, $3)
            RETURNING id, created_at`,
			withdrawal.UserID,
			withdrawal.Amount,
			withdrawal.Note,
		).Scan(&withdrawal.ID, &withdrawal.CreatedAt)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

func (s *pgLedgerStore) ListWithdrawals(ctx context.Context, userID string) ([]types.Withdrawal, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, amount, note, created_at
        FROM withdrawals
        WHERE user_id = $1
        ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	defer rows.Close()

	var withdrawals []types.Withdrawal
	for rows.Next() {
		var w types.Withdrawal
		if err := rows.Scan(&w.ID, &w.UserID, &w.Amount, &w.Note, &w.CreatedAt); err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		withdrawals = append(withdrawals, w)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return withdrawals, nil
}

func (s *pgLedgerStore) DeleteWithdrawal(ctx context.Context, userID, withdrawalID string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM withdrawals WHERE id = $1 AND user_id = $2`,
		withdrawalID, userID)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("withdrawal", withdrawalID)
	}
	return nil
}

func (s *pgLedgerStore) ExecuteWalletTransfer(ctx context.Context, userID, tripID string, plan internal_store.WalletTransferPlanFn) (*types.WalletTransfer, error) {
	var transfer types.WalletTransfer

	err := WithTx(ctx, s.db, func(tx pgx.Tx) error {
		trip, err := lockTrip(ctx, tx, userID, tripID)
		if err != nil {
			return err
		}

		result, err := plan(trip)
		if err != nil {
			return err
		}
		transfer = result.Transfer

		err = tx.QueryRow(ctx, `
            INSERT INTO wallet_transfers (
                user_id, trip_id, from_wallet, to_wallet, amount,
                impact_type, profit_change, note
            )
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            RETURNING id, created_at`,
			transfer.UserID,
			transfer.TripID,
			string(transfer.FromWallet),
			string(transfer.ToWallet),
			transfer.Amount,
			string(transfer.ImpactType),
			transfer.ProfitChange,
			transfer.Note,
		).Scan(&transfer.ID, &transfer.CreatedAt)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}

		_, err = tx.Exec(ctx, `
            UPDATE trips
            SET trip_reserve_balance = $1, operating_account = $2,
                business_account = $3, updated_at = NOW()
            WHERE id = $4`,
			result.NewReserve,
			result.NewOperating,
			result.NewBusiness,
			tripID,
		)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (s *pgLedgerStore) ListWalletTransfers(ctx context.Context, userID, tripID string) ([]types.WalletTransfer, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, trip_id, from_wallet, to_wallet, amount,
               impact_type, profit_change, note, created_at
        FROM wallet_transfers
        WHERE user_id = $1 AND trip_id = $2
        ORDER BY created_at ASC`,
		userID, tripID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	defer rows.Close()

	return scanWalletTransfers(rows)
}

func (s *pgLedgerStore) ExecuteGlobalTransfer(ctx context.Context, userID string, plan internal_store.GlobalTransferPlanFn) (*types.GlobalTransfer, error) {
	var transfer *types.GlobalTransfer

	err := WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := lockSettings(ctx, tx, userID); err != nil {
			return err
		}

		snap, err := snapshot(ctx, tx, userID)
		if err != nil {
			return err
		}

		transfer, err = plan(snap)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
            INSERT INTO global_transfers (user_id, from_bucket, to_bucket, amount, note)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id, created_at`,
			transfer.UserID,
			string(transfer.FromBucket),
			string(transfer.ToBucket),
			transfer.Amount,
			transfer.Note,
		).Scan(&transfer.ID, &transfer.CreatedAt)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.GetLogger().Debugw("Inserted global transfer", "id", transfer.ID)
	return transfer, nil
}

func (s *pgLedgerStore) ListGlobalTransfers(ctx context.Context, userID string) ([]types.GlobalTransfer, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, from_bucket, to_bucket, amount, note, created_at
        FROM global_transfers
        WHERE user_id = $1
        ORDER BY created_at ASC`,
		userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	defer rows.Close()

	return scanGlobalTransfers(rows)
}

func (s *pgLedgerStore) Snapshot(ctx context.Context, userID string) (*types.LedgerSnapshot, error) {
	return snapshot(ctx, s.db, userID)
}

// snapshot reads the raw ledger sums and transfer histories the aggregator
// folds. It runs against the pool or inside a transaction.
func snapshot(ctx context.Context, q queryer, userID string) (*types.LedgerSnapshot, error) {
	var snap types.LedgerSnapshot

	err := q.QueryRow(ctx, `
        SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(business_amount), 0)
        FROM advance_payments
        WHERE user_id = $1`,
		userID,
	).Scan(&snap.AdvanceTotal, &snap.AdvanceBusinessTotal)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	err = q.QueryRow(ctx, `
        SELECT
            COALESCE(SUM(released_profit) FILTER (WHERE status = $2), 0),
            COALESCE(SUM(operating_account) FILTER (WHERE status IN ($3, $4)), 0),
            COALESCE(SUM(trip_reserve_balance) FILTER (WHERE status IN ($3, $4)), 0)
        FROM trips
        WHERE user_id = $1`,
		userID,
		string(types.TripStatusCompleted),
		string(types.TripStatusUpcoming),
		string(types.TripStatusInProgress),
	).Scan(&snap.ReleasedProfitTotal, &snap.ActiveOperatingTotal, &snap.ActiveReserveTotal)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	err = q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM withdrawals WHERE user_id = $1`,
		userID,
	).Scan(&snap.WithdrawalsTotal)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	err = q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = $1`,
		userID,
	).Scan(&snap.TripExpensesTotal)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	err = q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM business_expenses WHERE user_id = $1`,
		userID,
	).Scan(&snap.BusinessExpensesTotal)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	wtRows, err := q.Query(ctx, `
        SELECT id, user_id, trip_id, from_wallet, to_wallet, amount,
               impact_type, profit_change, note, created_at
        FROM wallet_transfers
        WHERE user_id = $1
        ORDER BY created_at ASC`,
		userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	snap.WalletTransfers, err = scanWalletTransfers(wtRows)
	wtRows.Close()
	if err != nil {
		return nil, err
	}

	gtRows, err := q.Query(ctx, `
        SELECT id, user_id, from_bucket, to_bucket, amount, note, created_at
        FROM global_transfers
        WHERE user_id = $1
        ORDER BY created_at ASC`,
		userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	snap.GlobalTransfers, err = scanGlobalTransfers(gtRows)
	gtRows.Close()
	if err != nil {
		return nil, err
	}

	return &snap, nil
}

func scanWalletTransfers(rows pgx.Rows) ([]types.WalletTransfer, error) {
	var transfers []types.WalletTransfer
	for rows.Next() {
		var t types.WalletTransfer
		err := rows.Scan(
			&t.ID, &t.UserID, &t.TripID, &t.FromWallet, &t.ToWallet,
			&t.Amount, &t.ImpactType, &t.ProfitChange, &t.Note, &t.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return transfers, nil
}

func scanGlobalTransfers(rows pgx.Rows) ([]types.GlobalTransfer, error) {
	var transfers []types.GlobalTransfer
	for rows.Next() {
		var t types.GlobalTransfer
		err := rows.Scan(&t.ID, &t.UserID, &t.FromBucket, &t.ToBucket, &t.Amount, &t.Note, &t.CreatedAt)
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return transfers, nil
}
