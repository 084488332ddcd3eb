package types

import "time"

// TripCompletionLog is the immutable record written when a trip completes.
// Exactly one row exists per completed trip.
type TripCompletionLog struct {
	ID                      string    `json:"id"`
	UserID                  string    `json:"userId"`
	TripID                  string    `json:"tripId"`
	FinalProfit             float64   `json:"finalProfit"`
	ReserveReleased         float64   `json:"reserveReleased"`
	TripSpendReleased       float64   `json:"tripSpendReleased"`
	BusinessAccountReleased float64   `json:"businessAccountReleased"`
	TotalAdvances           float64   `json:"totalAdvances"`
	TotalExpenses           float64   `json:"totalExpenses"`
	CompletedAt             time.Time `json:"completedAt"`
}

// CompletionResult is returned to the caller after a successful completion,
// including the new global profit-wallet total for immediate UI feedback.
type CompletionResult struct {
	Log               TripCompletionLog `json:"log"`
	Trip              Trip              `json:"trip"`
	TotalProfitWallet float64           `json:"totalProfitWallet"` // Σ released_profit across completed trips
}
