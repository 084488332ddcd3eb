// Package service implements the fund-separation engine: balance aggregation,
// transfer validation and execution, the reserve guard, and the trip
// completion transition. Services hold no state of their own; all durable
// state lives behind the store interfaces and all balance math is a
// deterministic fold over the ledger.
package service

import (
	"context"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	istore "github.com/TrekLedger/trek-ledger-backend/internal/store"
	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

// BalanceCache memoizes the computed global balances per user. It is an
// optimization only: aggregation over the ledger stays authoritative, and the
// cache is invalidated on every ledger mutation.
type BalanceCache interface {
	GetGlobalBalances(ctx context.Context, userID string) (*types.GlobalBalances, bool)
	SetGlobalBalances(ctx context.Context, userID string, balances types.GlobalBalances)
	Invalidate(ctx context.Context, userID string)
}

// BalanceService derives the four global bucket balances and per-trip wallet
// views from raw ledger state.
type BalanceService struct {
	trips  istore.TripStore
	ledger istore.LedgerStore
	cache  BalanceCache
}

// NewBalanceService creates a new balance service. cache may be nil.
func NewBalanceService(trips istore.TripStore, ledger istore.LedgerStore, cache BalanceCache) *BalanceService {
	return &BalanceService{trips: trips, ledger: ledger, cache: cache}
}

// ComputeGlobalBalances folds a ledger snapshot into the four global buckets.
// Bucket balances are derived views, not stored counters: the entire transfer
// history is replayed, in order, on every computation.
func ComputeGlobalBalances(snap *types.LedgerSnapshot) types.GlobalBalances {
	balances := types.GlobalBalances{
		ProfitWithdrawable: snap.ReleasedProfitTotal - snap.WithdrawalsTotal,
		BusinessAccount:    snap.AdvanceBusinessTotal - snap.BusinessExpensesTotal,
		TripBalances:       snap.ActiveOperatingTotal,
		TripReserves:       snap.ActiveReserveTotal,
	}

	// Wallet transfers in and out of a trip's business wallet move money that
	// the trip-field sums cannot see; fold them into the business bucket.
	for _, wt := range snap.WalletTransfers {
		if wt.ToWallet == types.WalletBusinessAccount {
			balances.BusinessAccount += wt.Amount
		}
		if wt.FromWallet == types.WalletBusinessAccount {
			balances.BusinessAccount -= wt.Amount
		}
	}

	// Replay the global transfer history oldest first.
	for _, gt := range snap.GlobalTransfers {
		applyBucketDelta(&balances, gt.FromBucket, -gt.Amount)
		applyBucketDelta(&balances, gt.ToBucket, gt.Amount)
	}

	return balances
}

func applyBucketDelta(balances *types.GlobalBalances, bucket types.Bucket, delta float64) {
	switch bucket {
	case types.BucketProfitWithdrawable:
		balances.ProfitWithdrawable += delta
	case types.BucketBusinessAccount:
		balances.BusinessAccount += delta
	case types.BucketTripBalances:
		balances.TripBalances += delta
	case types.BucketTripReserves:
		balances.TripReserves += delta
	}
}

// GlobalBalances returns the user's current global bucket balances, serving a
// cached snapshot when one is still valid.
func (s *BalanceService) GlobalBalances(ctx context.Context, userID string) (*types.GlobalBalances, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetGlobalBalances(ctx, userID); ok {
			return cached, nil
		}
	}

	snap, err := s.ledger.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	balances := ComputeGlobalBalances(snap)

	if s.cache != nil {
		s.cache.SetGlobalBalances(ctx, userID, balances)
	}
	return &balances, nil
}

// TripWallets returns the three wallet balances of a single trip.
func (s *BalanceService) TripWallets(ctx context.Context, userID, tripID string) (*types.TripWallets, error) {
	trip, err := s.trips.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, apperrors.TripNotFound(tripID)
	}
	return &types.TripWallets{
		TripID:             trip.ID,
		TripReserveBalance: trip.TripReserveBalance,
		OperatingAccount:   trip.OperatingAccount,
		BusinessAccount:    trip.BusinessAccount,
	}, nil
}

func invalidateBalances(ctx context.Context, cache BalanceCache, userID string) {
	if cache == nil {
		return
	}
	cache.Invalidate(ctx, userID)
	logger.GetLogger().Debugw("Invalidated balance cache", "userId", userID)
}
