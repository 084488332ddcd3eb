package service

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	istore "github.com/TrekLedger/trek-ledger-backend/internal/store"
	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/TrekLedger/trek-ledger-backend/pkg/finance"
	"github.com/TrekLedger/trek-ledger-backend/pkg/valueobjects"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

// PaymentService records customer advance payments, splitting each into its
// reserve/operating/business shares at receipt.
type PaymentService struct {
	trips  istore.TripStore
	ledger istore.LedgerStore
	cache  BalanceCache
}

func NewPaymentService(trips istore.TripStore, ledger istore.LedgerStore, cache BalanceCache) *PaymentService {
	return &PaymentService{trips: trips, ledger: ledger, cache: cache}
}

// RecordAdvance persists an advance payment. The split amounts are computed
// from the trip's reserve percentage as it stands inside the insert
// transaction and frozen on the payment row; later percentage changes never
// retroactively alter past splits.
func (s *PaymentService) RecordAdvance(ctx context.Context, userID string, params types.CreateAdvancePaymentParams) (*types.AdvancePayment, error) {
	money, err := valueobjects.NewPositiveMoney(params.Amount)
	if err != nil {
		return nil, err
	}

	paidAt := time.Now().UTC()
	if params.PaidAt != nil {
		paidAt = params.PaidAt.UTC()
	}

	payment, err := s.ledger.InsertAdvancePayment(ctx, userID, params.TripID, func(trip *types.Trip) (*types.AdvancePayment, error) {
		if trip.Status.IsTerminal() {
			return nil, apperrors.ValidationFailed(
				"trip is closed",
				fmt.Sprintf("cannot record an advance on a %s trip", trip.Status),
			)
		}

		split, err := finance.SplitAdvance(money, trip.ReservePercentage)
		if err != nil {
			return nil, err
		}

		return &types.AdvancePayment{
			UserID:            userID,
			TripID:            trip.ID,
			ParticipantID:     params.ParticipantID,
			Amount:            money.Float64(),
			TripReserveAmount: split.TripReserveAmount,
			OperatingAmount:   split.OperatingAmount,
			BusinessAmount:    split.BusinessAmount,
			Note:              params.Note,
			PaidAt:            paidAt,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	invalidateBalances(ctx, s.cache, userID)
	logger.GetLogger().Infow("Recorded advance payment",
		"tripId", params.TripID,
		"amount", payment.Amount,
		"reserve", payment.TripReserveAmount,
	)
	return payment, nil
}

// PreviewSplit runs the split calculator without persisting anything, for
// live form previews. It uses the same pure function as RecordAdvance, so
// preview and persisted amounts always agree.
func (s *PaymentService) PreviewSplit(ctx context.Context, userID, tripID string, amount float64) (*types.AdvanceSplit, error) {
	money, err := valueobjects.NewPositiveMoney(amount)
	if err != nil {
		return nil, err
	}

	trip, err := s.trips.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, apperrors.TripNotFound(tripID)
	}

	split, err := finance.SplitAdvance(money, trip.ReservePercentage)
	if err != nil {
		return nil, err
	}
	return &split, nil
}

// ListAdvances lists the user's advance payments, optionally filtered to one
// trip.
func (s *PaymentService) ListAdvances(ctx context.Context, userID string, tripID *string) ([]types.AdvancePayment, error) {
	return s.ledger.ListAdvancePayments(ctx, userID, tripID)
}
