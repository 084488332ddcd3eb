// Package store defines the persistence interfaces the ledger engine runs
// against. Every mutating operation that validates against current balances is
// expressed as a plan callback: the store locks the rows involved, loads their
// current state, invokes the callback to validate and compute the mutation,
// and commits the result in the same transaction. A plan error aborts the
// transaction with no partial state change.
package store

import (
	"context"

	"github.com/TrekLedger/trek-ledger-backend/types"
)

// WalletTransferPlan is the outcome of validating a trip-wallet transfer
// against the locked trip: the audit row to insert and the three new wallet
// balances to persist.
type WalletTransferPlan struct {
	Transfer     types.WalletTransfer
	NewReserve   float64
	NewOperating float64
	NewBusiness  float64
}

// WalletTransferPlanFn validates a transfer against the trip as currently
// locked in the transaction and returns the plan, or an error to abort.
type WalletTransferPlanFn func(trip *types.Trip) (*WalletTransferPlan, error)

// AdvancePaymentPlanFn computes the payment row (including its split amounts)
// from the trip as currently locked, so the reserve percentage in effect at
// that moment is the one captured on the row.
type AdvancePaymentPlanFn func(trip *types.Trip) (*types.AdvancePayment, error)

// CompletionPlanFn validates the completion transition and produces the
// completion log row. totalAdvances and totalExpenses are summed inside the
// transaction for the audit breakdown.
type CompletionPlanFn func(trip *types.Trip, totalAdvances, totalExpenses float64) (*types.TripCompletionLog, error)

// ExpenseGuardFn runs the reserve guard against the locked trip and the total
// of its already-recorded expenses before an expense row is inserted.
type ExpenseGuardFn func(trip *types.Trip, existingExpensesTotal float64) error

// BusinessExpenseGuardFn runs the business reserve guard. reserveRequirement
// is the sum of estimated costs over the user's non-terminal trips, computed
// inside the transaction.
type BusinessExpenseGuardFn func(settings *types.Settings, reserveRequirement float64) error

// GlobalTransferPlanFn validates a global bucket transfer against a ledger
// snapshot taken inside the transaction and returns the audit row to insert.
type GlobalTransferPlanFn func(snap *types.LedgerSnapshot) (*types.GlobalTransfer, error)

// WithdrawalGuardFn validates a withdrawal against a ledger snapshot taken
// inside the transaction.
type WithdrawalGuardFn func(snap *types.LedgerSnapshot) error

// TripStore handles trip records and their wallet balances.
type TripStore interface {
	CreateTrip(ctx context.Context, trip types.Trip) (*types.Trip, error)
	GetTrip(ctx context.Context, userID, tripID string) (*types.Trip, error)
	ListTrips(ctx context.Context, userID string) ([]types.Trip, error)
	UpdateTrip(ctx context.Context, userID, tripID string, update types.TripUpdate) (*types.Trip, error)

	// CompleteTrip runs the one-way completion transition: the trip row is
	// locked, the plan validates and produces the log, and the trip update plus
	// log insert commit as one unit.
	CompleteTrip(ctx context.Context, userID, tripID string, plan CompletionPlanFn) (*types.CompletionResult, error)
}

// LedgerStore handles the ledger rows: payments, expenses, withdrawals and
// transfers, plus the aggregation snapshot.
type LedgerStore interface {
	InsertAdvancePayment(ctx context.Context, userID, tripID string, plan AdvancePaymentPlanFn) (*types.AdvancePayment, error)
	ListAdvancePayments(ctx context.Context, userID string, tripID *string) ([]types.AdvancePayment, error)

	InsertExpense(ctx context.Context, expense types.Expense, guard ExpenseGuardFn) (*types.Expense, error)
	ListExpenses(ctx context.Context, userID, tripID string) ([]types.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error

	InsertBusinessExpense(ctx context.Context, expense types.BusinessExpense, guard BusinessExpenseGuardFn) (*types.BusinessExpense, error)
	ListBusinessExpenses(ctx context.Context, userID string) ([]types.BusinessExpense, error)

	InsertWithdrawal(ctx context.Context, withdrawal types.Withdrawal, guard WithdrawalGuardFn) (*types.Withdrawal, error)
	ListWithdrawals(ctx context.Context, userID string) ([]types.Withdrawal, error)
	DeleteWithdrawal(ctx context.Context, userID, withdrawalID string) error

	ExecuteWalletTransfer(ctx context.Context, userID, tripID string, plan WalletTransferPlanFn) (*types.WalletTransfer, error)
	ListWalletTransfers(ctx context.Context, userID, tripID string) ([]types.WalletTransfer, error)

	ExecuteGlobalTransfer(ctx context.Context, userID string, plan GlobalTransferPlanFn) (*types.GlobalTransfer, error)
	ListGlobalTransfers(ctx context.Context, userID string) ([]types.GlobalTransfer, error)

	// Snapshot reads the raw ledger state the balance aggregator folds.
	Snapshot(ctx context.Context, userID string) (*types.LedgerSnapshot, error)
}

// SettingsStore handles the per-user settings row.
type SettingsStore interface {
	GetSettings(ctx context.Context, userID string) (*types.Settings, error)
	UpdateSettings(ctx context.Context, userID string, update types.SettingsUpdate) (*types.Settings, error)
}
