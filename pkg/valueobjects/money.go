// pkg/valueobjects/money.go
package valueobjects

import (
	"github.com/TrekLedger/trek-ledger-backend/errors"
	"github.com/shopspring/decimal"
)

// Money represents a monetary amount in the ledger's single implicit currency
// (rendered as INR by the UI), constrained to two decimal places.
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates a Money instance with validation.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.LessThan(decimal.Zero) {
		return Money{}, errors.ValidationFailed(
			"invalid amount",
			"amount cannot be negative",
		)
	}

	// Ensure amount has max 2 decimal places
	if amount.Exponent() < -2 {
		return Money{}, errors.ValidationFailed(
			"invalid amount",
			"amount cannot have more than 2 decimal places",
		)
	}

	return Money{amount: amount}, nil
}

// NewMoneyFromFloat creates a Money instance from a float64, rounding to two
// decimal places. Used at the request boundary where amounts arrive as JSON
// numbers.
func NewMoneyFromFloat(amount float64) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount).Round(2))
}

// NewPositiveMoney is NewMoneyFromFloat plus a strictly-positive check, the
// common case for payment, expense, transfer and withdrawal amounts.
func NewPositiveMoney(amount float64) (Money, error) {
	m, err := NewMoneyFromFloat(amount)
	if err != nil {
		return Money{}, err
	}
	if m.amount.IsZero() {
		return Money{}, errors.ValidationFailed(
			"invalid amount",
			"amount must be greater than zero",
		)
	}
	return m, nil
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Float64 returns the amount as a float64 for persistence and JSON responses.
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// Add adds two monetary values.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) String() string {
	return m.amount.StringFixed(2)
}
