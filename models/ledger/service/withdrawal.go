package service

import (
	"context"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	istore "github.com/TrekLedger/trek-ledger-backend/internal/store"
	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/TrekLedger/trek-ledger-backend/pkg/valueobjects"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

// WithdrawalService records owner withdrawals against withdrawable profit.
type WithdrawalService struct {
	ledger istore.LedgerStore
	cache  BalanceCache
}

func NewWithdrawalService(ledger istore.LedgerStore, cache BalanceCache) *WithdrawalService {
	return &WithdrawalService{ledger: ledger, cache: cache}
}

// Record validates the withdrawal against the computed withdrawable profit at
// creation time and persists it.
func (s *WithdrawalService) Record(ctx context.Context, userID string, params types.CreateWithdrawalParams) (*types.Withdrawal, error) {
	money, err := valueobjects.NewPositiveMoney(params.Amount)
	if err != nil {
		return nil, err
	}
	amt := money.Float64()

	withdrawal, err := s.ledger.InsertWithdrawal(ctx, types.Withdrawal{
		UserID: userID,
		Amount: amt,
		Note:   params.Note,
	}, func(snap *types.LedgerSnapshot) error {
		balances := ComputeGlobalBalances(snap)
		if amt > balances.ProfitWithdrawable {
			return apperrors.InsufficientBalance(
				types.BucketProfitWithdrawable.String(),
				balances.ProfitWithdrawable,
				amt,
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateBalances(ctx, s.cache, userID)
	logger.GetLogger().Infow("Recorded withdrawal", "amount", amt)
	return withdrawal, nil
}

// Delete removes a withdrawal. Deletions are not re-validated against current
// profit.
func (s *WithdrawalService) Delete(ctx context.Context, userID, withdrawalID string) error {
	if err := s.ledger.DeleteWithdrawal(ctx, userID, withdrawalID); err != nil {
		return err
	}
	invalidateBalances(ctx, s.cache, userID)
	return nil
}

// List lists the user's withdrawals.
func (s *WithdrawalService) List(ctx context.Context, userID string) ([]types.Withdrawal, error) {
	return s.ledger.ListWithdrawals(ctx, userID)
}
