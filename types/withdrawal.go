package types

import "time"

// Withdrawal is an owner withdrawal against withdrawable profit. It is
// validated against the computed withdrawable profit at creation time only;
// deletion is not re-validated.
type Withdrawal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Amount    float64   `json:"amount"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateWithdrawalParams struct {
	Amount float64 `json:"amount"`
	Note   string  `json:"note,omitempty"`
}
