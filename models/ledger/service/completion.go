package service

import (
	"context"
	"time"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	istore "github.com/TrekLedger/trek-ledger-backend/internal/store"
	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

// CompletionService runs the irreversible trip-completion transition: it
// releases the locked reserve and any unspent operating funds as withdrawable
// profit, zeroes the trip wallets, and writes the one-per-trip completion log.
type CompletionService struct {
	trips istore.TripStore
	cache BalanceCache
}

func NewCompletionService(trips istore.TripStore, cache BalanceCache) *CompletionService {
	return &CompletionService{trips: trips, cache: cache}
}

// Complete transitions a trip to completed. The trip update and the log
// insert commit as one unit; a second call on the same trip is rejected with
// no state change. The returned result carries the new global profit-wallet
// total for immediate display.
func (s *CompletionService) Complete(ctx context.Context, userID, tripID string) (*types.CompletionResult, error) {
	log := logger.GetLogger()

	result, err := s.trips.CompleteTrip(ctx, userID, tripID, func(trip *types.Trip, totalAdvances, totalExpenses float64) (*types.TripCompletionLog, error) {
		switch trip.Status {
		case types.TripStatusCompleted:
			return nil, apperrors.New(
				apperrors.InvalidStatusTransitionError,
				"Trip already completed",
				"completion is a one-way transition",
			)
		case types.TripStatusCancelled:
			return nil, apperrors.New(
				apperrors.InvalidStatusTransitionError,
				"Cannot complete a cancelled trip",
				"cancelled trips hold no releasable funds",
			)
		}

		reserveReleased := trip.TripReserveBalance
		// An overspent trip does not claw back profit from other sources:
		// a negative operating account is clamped to zero.
		tripSpendReleased := trip.OperatingAccount
		if tripSpendReleased < 0 {
			tripSpendReleased = 0
		}
		finalProfit := reserveReleased + tripSpendReleased

		return &types.TripCompletionLog{
			UserID:                  userID,
			TripID:                  tripID,
			FinalProfit:             finalProfit,
			ReserveReleased:         reserveReleased,
			TripSpendReleased:       tripSpendReleased,
			BusinessAccountReleased: 0,
			TotalAdvances:           totalAdvances,
			TotalExpenses:           totalExpenses,
			CompletedAt:             time.Now().UTC(),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	invalidateBalances(ctx, s.cache, userID)
	log.Infow("Completed trip",
		"tripId", tripID,
		"finalProfit", result.Log.FinalProfit,
		"reserveReleased", result.Log.ReserveReleased,
		"tripSpendReleased", result.Log.TripSpendReleased,
		"totalProfitWallet", result.TotalProfitWallet,
	)
	return result, nil
}
