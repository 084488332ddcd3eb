package types

import "time"

type TripStatus string

const (
	TripStatusUpcoming   TripStatus = "upcoming"    // Trip is planned but not started
	TripStatusInProgress TripStatus = "in_progress" // Trip is currently running
	TripStatusCompleted  TripStatus = "completed"   // Trip finished, profit released
	TripStatusCancelled  TripStatus = "cancelled"   // Trip was called off
)

// DefaultReservePercentage is applied when a trip is created without an
// explicit reserve percentage and the user has no stored setting.
const DefaultReservePercentage = 0.60

// Trip carries the three per-trip wallet balances alongside the usual trip
// metadata. Once Status is completed, TripReserveBalance and OperatingAccount
// are forced to 0 and ReleasedProfit is fixed; none of them change afterwards.
type Trip struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"userId"`
	Name                 string     `json:"name"`
	Destination          string     `json:"destination,omitempty"`
	Status               TripStatus `json:"status"`
	ReservePercentage    float64    `json:"reservePercentage"`
	TripReserveBalance   float64    `json:"tripReserveBalance"`
	OperatingAccount     float64    `json:"operatingAccount"` // may go negative = overspend
	BusinessAccount      float64    `json:"businessAccount"`
	TotalAdvanceReceived float64    `json:"totalAdvanceReceived"`
	ReleasedProfit       float64    `json:"releasedProfit"`
	EstimatedCost        float64    `json:"estimatedCost"`
	StartDate            *time.Time `json:"startDate,omitempty"`
	EndDate              *time.Time `json:"endDate,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// IsValidTransition checks if a status transition is allowed
func (ts TripStatus) IsValidTransition(newStatus TripStatus) bool {
	transitions := map[TripStatus][]TripStatus{
		TripStatusUpcoming: {
			TripStatusInProgress,
			TripStatusCompleted,
			TripStatusCancelled,
		},
		TripStatusInProgress: {
			TripStatusCompleted,
			TripStatusCancelled,
		},
		TripStatusCompleted: {}, // Terminal state
		TripStatusCancelled: {}, // Terminal state
	}

	allowedTransitions, exists := transitions[ts]
	if !exists {
		return false
	}

	for _, allowed := range allowedTransitions {
		if allowed == newStatus {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status is a terminal state.
func (ts TripStatus) IsTerminal() bool {
	return ts == TripStatusCompleted || ts == TripStatusCancelled
}

// String provides a string representation of the status
func (ts TripStatus) String() string {
	return string(ts)
}

// IsValid checks if the status is a valid trip status
func (ts TripStatus) IsValid() bool {
	switch ts {
	case TripStatusUpcoming, TripStatusInProgress, TripStatusCompleted, TripStatusCancelled:
		return true
	default:
		return false
	}
}

type TripUpdate struct {
	Name          *string     `json:"name,omitempty"`
	Destination   *string     `json:"destination,omitempty"`
	Status        *TripStatus `json:"status,omitempty"`
	EstimatedCost *float64    `json:"estimatedCost,omitempty"`
	StartDate     *time.Time  `json:"startDate,omitempty"`
	EndDate       *time.Time  `json:"endDate,omitempty"`
}

// TripWallets is the per-trip view of the three wallet balances.
type TripWallets struct {
	TripID             string  `json:"tripId"`
	TripReserveBalance float64 `json:"tripReserveBalance"`
	OperatingAccount   float64 `json:"operatingAccount"`
	BusinessAccount    float64 `json:"businessAccount"`
}
