package types

import "time"

// Settings stores per-user defaults and thresholds. The three-way percentage
// split predates the five-bucket model and is still read as the default
// reserve percentage for new trips.
type Settings struct {
	UserID                   string    `json:"userId"`
	TripReservePercentage    float64   `json:"tripReservePercentage"`
	EarlyUnlockPercentage    float64   `json:"earlyUnlockPercentage"`
	LockedPercentage         float64   `json:"lockedPercentage"`
	BankBalance              float64   `json:"bankBalance"`
	LowBalanceThreshold      float64   `json:"lowBalanceThreshold"`
	CriticalBalanceThreshold float64   `json:"criticalBalanceThreshold"`
	UpdatedAt                time.Time `json:"updatedAt"`
}

type SettingsUpdate struct {
	TripReservePercentage    *float64 `json:"tripReservePercentage,omitempty"`
	EarlyUnlockPercentage    *float64 `json:"earlyUnlockPercentage,omitempty"`
	LockedPercentage         *float64 `json:"lockedPercentage,omitempty"`
	BankBalance              *float64 `json:"bankBalance,omitempty"`
	LowBalanceThreshold      *float64 `json:"lowBalanceThreshold,omitempty"`
	CriticalBalanceThreshold *float64 `json:"criticalBalanceThreshold,omitempty"`
}

// DefaultSettings returns the settings applied to a user with no stored row.
func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:                   userID,
		TripReservePercentage:    DefaultReservePercentage,
		EarlyUnlockPercentage:    0.20,
		LockedPercentage:         0.20,
		BankBalance:              0,
		LowBalanceThreshold:      10000,
		CriticalBalanceThreshold: 2500,
	}
}
