package types

import "time"

// Expense is a trip-scoped expense. The category is immutable; rows are
// deletable only while the owning trip is not completed.
type Expense struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	TripID      string    `json:"tripId"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	SpentAt     time.Time `json:"spentAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateExpenseParams struct {
	TripID      string     `json:"tripId"`
	Amount      float64    `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description,omitempty"`
	SpentAt     *time.Time `json:"spentAt,omitempty"`
	// Override skips the reserve-shortfall veto; it never changes the
	// shortfall computation itself.
	Override bool `json:"override,omitempty"`
}

// BusinessExpense is a global (non-trip) business overhead expense, gated by
// the reserve-shortfall warning at creation.
type BusinessExpense struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	SpentAt     time.Time `json:"spentAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateBusinessExpenseParams struct {
	Amount      float64    `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description,omitempty"`
	SpentAt     *time.Time `json:"spentAt,omitempty"`
	Override    bool       `json:"override,omitempty"`
}
