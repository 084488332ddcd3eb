package service

import (
	"context"
	"fmt"
	"math"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	istore "github.com/TrekLedger/trek-ledger-backend/internal/store"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

const percentageSumTolerance = 1e-6

// SettingsService reads and updates the per-user defaults and thresholds.
type SettingsService struct {
	settings istore.SettingsStore
}

func NewSettingsService(settings istore.SettingsStore) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the user's settings, falling back to defaults when no row
// exists yet.
func (s *SettingsService) Get(ctx context.Context, userID string) (*types.Settings, error) {
	return s.settings.GetSettings(ctx, userID)
}

// Update validates and applies a settings update. When any of the legacy
// three-way percentages is changed, the resulting trio must sum to 1.
func (s *SettingsService) Update(ctx context.Context, userID string, update types.SettingsUpdate) (*types.Settings, error) {
	for name, pct := range map[string]*float64{
		"trip reserve percentage": update.TripReservePercentage,
		"early unlock percentage": update.EarlyUnlockPercentage,
		"locked percentage":       update.LockedPercentage,
	} {
		if pct != nil && (*pct < 0 || *pct > 1) {
			return nil, apperrors.ValidationFailed(
				"invalid percentage",
				fmt.Sprintf("%s must be between 0 and 1, got %v", name, *pct),
			)
		}
	}
	for name, v := range map[string]*float64{
		"bank balance":               update.BankBalance,
		"low balance threshold":      update.LowBalanceThreshold,
		"critical balance threshold": update.CriticalBalanceThreshold,
	} {
		if v != nil && *v < 0 {
			return nil, apperrors.ValidationFailed(
				"invalid value",
				fmt.Sprintf("%s cannot be negative", name),
			)
		}
	}

	if update.TripReservePercentage != nil || update.EarlyUnlockPercentage != nil || update.LockedPercentage != nil {
		current, err := s.settings.GetSettings(ctx, userID)
		if err != nil {
			return nil, err
		}
		reserve := pick(update.TripReservePercentage, current.TripReservePercentage)
		early := pick(update.EarlyUnlockPercentage, current.EarlyUnlockPercentage)
		locked := pick(update.LockedPercentage, current.LockedPercentage)
		if math.Abs(reserve+early+locked-1) > percentageSumTolerance {
			return nil, apperrors.ValidationFailed(
				"percentages must sum to 100",
				fmt.Sprintf("reserve %v + early unlock %v + locked %v does not sum to 1", reserve, early, locked),
			)
		}
	}

	return s.settings.UpdateSettings(ctx, userID, update)
}

func pick(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}
