package service

import (
	"context"
	"fmt"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	istore "github.com/TrekLedger/trek-ledger-backend/internal/store"
	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

// TripService is the thin trip surface the ledger engine needs: create, read,
// update metadata, and cancel. Completion goes through CompletionService.
type TripService struct {
	trips    istore.TripStore
	settings istore.SettingsStore
}

func NewTripService(trips istore.TripStore, settings istore.SettingsStore) *TripService {
	return &TripService{trips: trips, settings: settings}
}

// CreateTrip creates a trip with zeroed wallets. When no reserve percentage
// is supplied, the user's stored default applies.
func (s *TripService) CreateTrip(ctx context.Context, trip *types.Trip) (*types.Trip, error) {
	if trip.Name == "" {
		return nil, apperrors.ValidationFailed("missing name", "trip name is required")
	}

	if trip.ReservePercentage == 0 {
		settings, err := s.settings.GetSettings(ctx, trip.UserID)
		if err != nil {
			return nil, err
		}
		trip.ReservePercentage = settings.TripReservePercentage
	}
	if trip.ReservePercentage < 0 || trip.ReservePercentage > 1 {
		return nil, apperrors.ValidationFailed(
			"invalid reserve percentage",
			fmt.Sprintf("reserve percentage must be between 0 and 1, got %v", trip.ReservePercentage),
		)
	}
	if trip.EstimatedCost < 0 {
		return nil, apperrors.ValidationFailed("invalid estimated cost", "estimated cost cannot be negative")
	}

	trip.Status = types.TripStatusUpcoming
	trip.TripReserveBalance = 0
	trip.OperatingAccount = 0
	trip.BusinessAccount = 0
	trip.TotalAdvanceReceived = 0
	trip.ReleasedProfit = 0

	created, err := s.trips.CreateTrip(ctx, *trip)
	if err != nil {
		return nil, err
	}

	logger.GetLogger().Infow("Created trip",
		"tripId", created.ID,
		"reservePercentage", created.ReservePercentage,
	)
	return created, nil
}

// GetTrip returns a single trip owned by the user.
func (s *TripService) GetTrip(ctx context.Context, userID, tripID string) (*types.Trip, error) {
	trip, err := s.trips.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, apperrors.TripNotFound(tripID)
	}
	return trip, nil
}

// ListTrips lists the user's trips.
func (s *TripService) ListTrips(ctx context.Context, userID string) ([]types.Trip, error) {
	return s.trips.ListTrips(ctx, userID)
}

// UpdateTrip updates trip metadata and non-completion status transitions.
// Completion is rejected here: it must go through the completion engine so
// the profit release and log are written.
func (s *TripService) UpdateTrip(ctx context.Context, userID, tripID string, update types.TripUpdate) (*types.Trip, error) {
	if update.Status != nil {
		if !update.Status.IsValid() {
			return nil, apperrors.ValidationFailed(
				"invalid status",
				fmt.Sprintf("status %s is not valid", *update.Status),
			)
		}
		if *update.Status == types.TripStatusCompleted {
			return nil, apperrors.ValidationFailed(
				"invalid status",
				"trips are completed through the completion endpoint",
			)
		}

		trip, err := s.GetTrip(ctx, userID, tripID)
		if err != nil {
			return nil, err
		}
		if !trip.Status.IsValidTransition(*update.Status) {
			return nil, apperrors.InvalidStatusTransition(trip.Status.String(), update.Status.String())
		}
	}
	if update.EstimatedCost != nil && *update.EstimatedCost < 0 {
		return nil, apperrors.ValidationFailed("invalid estimated cost", "estimated cost cannot be negative")
	}

	return s.trips.UpdateTrip(ctx, userID, tripID, update)
}
