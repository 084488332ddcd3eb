package service

import (
	"context"
	"fmt"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	istore "github.com/TrekLedger/trek-ledger-backend/internal/store"
	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/TrekLedger/trek-ledger-backend/pkg/valueobjects"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

// GlobalTransferService validates and executes transfers between the four
// global buckets. Because bucket balances are derived, the executed transfer's
// only durable side effect is its audit row; the next aggregation pass applies
// it.
type GlobalTransferService struct {
	ledger istore.LedgerStore
	cache  BalanceCache
}

func NewGlobalTransferService(ledger istore.LedgerStore, cache BalanceCache) *GlobalTransferService {
	return &GlobalTransferService{ledger: ledger, cache: cache}
}

// IsGlobalTransferAllowed enforces the allowed-path graph for global buckets.
// Only business_account and trip_balances can receive transfers: withdrawable
// profit only arrives via trip completion and reserves only via the
// advance-payment split.
func IsGlobalTransferAllowed(from, to types.Bucket) bool {
	if from == to {
		return false
	}
	return to == types.BucketBusinessAccount || to == types.BucketTripBalances
}

// GlobalTransferImpact describes the effect of a global transfer. Sourcing
// from trip_reserves or profit_withdrawable always carries a warning: both
// represent borrowing against future or personal money.
func GlobalTransferImpact(from, to types.Bucket, amount float64) types.TransferImpact {
	impact := types.TransferImpact{}
	switch from {
	case types.BucketTripReserves:
		impact.ProfitChange = -amount
		impact.Warning = "This borrows from locked trip reserves against future profit."
	case types.BucketProfitWithdrawable:
		impact.ProfitChange = -amount
		impact.Warning = "This puts withdrawable profit back into the business."
	}
	return impact
}

func globalTransferNote(from, to types.Bucket, amount float64) string {
	return fmt.Sprintf("Moved %.2f from %s to %s", amount, from, to)
}

// Execute validates and commits a global bucket transfer. Balances are
// computed from a ledger snapshot taken inside the transaction, so a racing
// mutation cannot make the validation stale.
func (s *GlobalTransferService) Execute(ctx context.Context, userID string, from, to types.Bucket, amount float64) (*types.GlobalTransfer, error) {
	if err := validateBucketPath(from, to); err != nil {
		return nil, err
	}
	money, err := valueobjects.NewPositiveMoney(amount)
	if err != nil {
		return nil, err
	}
	amt := money.Float64()

	transfer, err := s.ledger.ExecuteGlobalTransfer(ctx, userID, func(snap *types.LedgerSnapshot) (*types.GlobalTransfer, error) {
		balances := ComputeGlobalBalances(snap)
		available := balances.Balance(from)
		if amt > available {
			return nil, apperrors.InsufficientBalance(from.String(), available, amt)
		}

		return &types.GlobalTransfer{
			UserID:     userID,
			FromBucket: from,
			ToBucket:   to,
			Amount:     amt,
			Note:       globalTransferNote(from, to, amt),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	invalidateBalances(ctx, s.cache, userID)
	logger.GetLogger().Infow("Executed global transfer",
		"from", from,
		"to", to,
		"amount", amt,
	)
	return transfer, nil
}

// Preview computes the impact of a prospective global transfer without
// executing it.
func (s *GlobalTransferService) Preview(from, to types.Bucket, amount float64) (*types.TransferImpact, error) {
	if err := validateBucketPath(from, to); err != nil {
		return nil, err
	}
	money, err := valueobjects.NewPositiveMoney(amount)
	if err != nil {
		return nil, err
	}
	impact := GlobalTransferImpact(from, to, money.Float64())
	return &impact, nil
}

// ListTransfers returns the user's global transfer history, oldest first.
func (s *GlobalTransferService) ListTransfers(ctx context.Context, userID string) ([]types.GlobalTransfer, error) {
	return s.ledger.ListGlobalTransfers(ctx, userID)
}

func validateBucketPath(from, to types.Bucket) error {
	if !from.IsValid() || !to.IsValid() {
		return apperrors.ValidationFailed(
			"invalid bucket",
			fmt.Sprintf("buckets must be one of %s, %s, %s, %s",
				types.BucketProfitWithdrawable, types.BucketBusinessAccount,
				types.BucketTripBalances, types.BucketTripReserves),
		)
	}
	if !IsGlobalTransferAllowed(from, to) {
		return apperrors.TransferNotAllowed(from.String(), to.String())
	}
	return nil
}
