package service

import "github.com/TrekLedger/trek-ledger-backend/types"

// TripReserveShortfall is the structured payload of a trip-expense reserve
// warning.
type TripReserveShortfall struct {
	TripName         string  `json:"tripName"`
	AvailableReserve float64 `json:"availableReserve"`
	ExpenseAmount    float64 `json:"expenseAmount"`
	Shortfall        float64 `json:"shortfall"`
}

// BusinessReserveShortfall is the structured payload of a business-expense
// reserve warning.
type BusinessReserveShortfall struct {
	ReserveRequirement float64 `json:"reserveRequirement"`
	CurrentBankBalance float64 `json:"currentBankBalance"`
	NewBankBalance     float64 `json:"newBankBalance"`
	AvailableCash      float64 `json:"availableCash"`
	ExpenseAmount      float64 `json:"expenseAmount"`
	Shortfall          float64 `json:"shortfall"`
}

// TripExpenseShortfall checks whether a prospective trip expense would exceed
// what is left of the trip's reserve after the expenses already recorded.
// It returns nil when the expense fits. The override flag never changes this
// computation; it only skips the veto.
func TripExpenseShortfall(trip *types.Trip, existingExpensesTotal, expenseAmount float64) *TripReserveShortfall {
	available := trip.TripReserveBalance - existingExpensesTotal
	shortfall := expenseAmount - available
	if shortfall <= 0 {
		return nil
	}
	return &TripReserveShortfall{
		TripName:         trip.Name,
		AvailableReserve: available,
		ExpenseAmount:    expenseAmount,
		Shortfall:        shortfall,
	}
}

// BusinessExpenseShortfall checks whether a prospective business expense would
// push the bank balance below the reserve requirement (the sum of estimated
// costs over non-terminal trips). It returns nil when the expense fits.
func BusinessExpenseShortfall(reserveRequirement, currentBankBalance, expenseAmount float64) *BusinessReserveShortfall {
	newBankBalance := currentBankBalance - expenseAmount
	shortfall := reserveRequirement - newBankBalance
	if shortfall <= 0 {
		return nil
	}
	return &BusinessReserveShortfall{
		ReserveRequirement: reserveRequirement,
		CurrentBankBalance: currentBankBalance,
		NewBankBalance:     newBankBalance,
		AvailableCash:      currentBankBalance - reserveRequirement,
		ExpenseAmount:      expenseAmount,
		Shortfall:          shortfall,
	}
}
