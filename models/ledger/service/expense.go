package service

import (
	"context"
	"time"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	istore "github.com/TrekLedger/trek-ledger-backend/internal/store"
	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/TrekLedger/trek-ledger-backend/pkg/valueobjects"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

// ExpenseService records trip and business expenses behind the reserve guard.
// The guard is a soft gate: it surfaces risk before the write, and an explicit
// override flag always lets the write proceed.
type ExpenseService struct {
	ledger istore.LedgerStore
	cache  BalanceCache
}

func NewExpenseService(ledger istore.LedgerStore, cache BalanceCache) *ExpenseService {
	return &ExpenseService{ledger: ledger, cache: cache}
}

// RecordTripExpense inserts a trip expense after running the trip reserve
// guard against the locked trip. Without the override flag, a shortfall is
// returned as a structured warning and nothing is persisted.
func (s *ExpenseService) RecordTripExpense(ctx context.Context, userID string, params types.CreateExpenseParams) (*types.Expense, error) {
	money, err := valueobjects.NewPositiveMoney(params.Amount)
	if err != nil {
		return nil, err
	}
	if params.Category == "" {
		return nil, apperrors.ValidationFailed("missing category", "expense category is required")
	}

	spentAt := time.Now().UTC()
	if params.SpentAt != nil {
		spentAt = params.SpentAt.UTC()
	}
	amt := money.Float64()

	expense, err := s.ledger.InsertExpense(ctx, types.Expense{
		UserID:      userID,
		TripID:      params.TripID,
		Amount:      amt,
		Category:    params.Category,
		Description: params.Description,
		SpentAt:     spentAt,
	}, func(trip *types.Trip, existingExpensesTotal float64) error {
		if trip.Status == types.TripStatusCompleted {
			return apperrors.ValidationFailed(
				"trip is completed",
				"expenses cannot be added to a completed trip",
			)
		}
		if params.Override {
			return nil
		}
		if shortfall := TripExpenseShortfall(trip, existingExpensesTotal, amt); shortfall != nil {
			return apperrors.ReserveShortfall(
				"Expense exceeds the trip's available reserve",
				map[string]interface{}{
					"tripName":         shortfall.TripName,
					"availableReserve": shortfall.AvailableReserve,
					"expenseAmount":    shortfall.ExpenseAmount,
					"shortfall":        shortfall.Shortfall,
				},
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateBalances(ctx, s.cache, userID)
	logger.GetLogger().Infow("Recorded trip expense",
		"tripId", params.TripID,
		"amount", amt,
		"category", params.Category,
	)
	return expense, nil
}

// DeleteTripExpense removes a trip expense. The store rejects the delete when
// the owning trip is completed.
func (s *ExpenseService) DeleteTripExpense(ctx context.Context, userID, expenseID string) error {
	if err := s.ledger.DeleteExpense(ctx, userID, expenseID); err != nil {
		return err
	}
	invalidateBalances(ctx, s.cache, userID)
	return nil
}

// ListTripExpenses lists a trip's expenses.
func (s *ExpenseService) ListTripExpenses(ctx context.Context, userID, tripID string) ([]types.Expense, error) {
	return s.ledger.ListExpenses(ctx, userID, tripID)
}

// RecordBusinessExpense inserts a business expense after running the business
// reserve guard. The reserve requirement is the sum of estimated costs over
// the user's non-terminal trips, computed inside the insert transaction.
func (s *ExpenseService) RecordBusinessExpense(ctx context.Context, userID string, params types.CreateBusinessExpenseParams) (*types.BusinessExpense, error) {
	money, err := valueobjects.NewPositiveMoney(params.Amount)
	if err != nil {
		return nil, err
	}
	if params.Category == "" {
		return nil, apperrors.ValidationFailed("missing category", "expense category is required")
	}

	spentAt := time.Now().UTC()
	if params.SpentAt != nil {
		spentAt = params.SpentAt.UTC()
	}
	amt := money.Float64()

	expense, err := s.ledger.InsertBusinessExpense(ctx, types.BusinessExpense{
		UserID:      userID,
		Amount:      amt,
		Category:    params.Category,
		Description: params.Description,
		SpentAt:     spentAt,
	}, func(settings *types.Settings, reserveRequirement float64) error {
		if params.Override {
			return nil
		}
		if shortfall := BusinessExpenseShortfall(reserveRequirement, settings.BankBalance, amt); shortfall != nil {
			return apperrors.ReserveShortfall(
				"Expense would breach the trip reserve requirement",
				map[string]interface{}{
					"reserveRequirement": shortfall.ReserveRequirement,
					"currentBankBalance": shortfall.CurrentBankBalance,
					"newBankBalance":     shortfall.NewBankBalance,
					"availableCash":      shortfall.AvailableCash,
					"expenseAmount":      shortfall.ExpenseAmount,
					"shortfall":          shortfall.Shortfall,
				},
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateBalances(ctx, s.cache, userID)
	logger.GetLogger().Infow("Recorded business expense",
		"amount", amt,
		"category", params.Category,
	)
	return expense, nil
}

// ListBusinessExpenses lists the user's business expenses.
func (s *ExpenseService) ListBusinessExpenses(ctx context.Context, userID string) ([]types.BusinessExpense, error) {
	return s.ledger.ListBusinessExpenses(ctx, userID)
}
