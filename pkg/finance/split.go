// Package finance holds the pure calculators of the ledger: the advance-split
// calculator and the 30/70 fund-separation view. Both are side-effect free and
// deterministic, so they can back both live previews and authoritative writes.
package finance

import (
	"fmt"

	"github.com/TrekLedger/trek-ledger-backend/errors"
	"github.com/TrekLedger/trek-ledger-backend/pkg/valueobjects"
	"github.com/TrekLedger/trek-ledger-backend/types"
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// SplitAdvance splits an advance into its trip-reserve, operating and business
// shares using the trip's reserve percentage:
//
//	trip_reserve = amount × reservePct
//	operating    = (amount − trip_reserve) / 2
//	business     = amount − trip_reserve − operating
//
// All arithmetic runs in decimal with the reserve and operating shares rounded
// to two places and the business share taking the remainder, so the three
// shares always sum exactly to the amount.
func SplitAdvance(amount valueobjects.Money, reservePct float64) (types.AdvanceSplit, error) {
	if reservePct < 0 || reservePct > 1 {
		return types.AdvanceSplit{}, errors.ValidationFailed(
			"invalid reserve percentage",
			fmt.Sprintf("reserve percentage must be between 0 and 1, got %v", reservePct),
		)
	}

	total := amount.Amount()
	reserve := total.Mul(decimal.NewFromFloat(reservePct)).Round(2)
	spendable := total.Sub(reserve)
	operating := spendable.Div(two).Round(2)
	business := spendable.Sub(operating)

	split := types.AdvanceSplit{
		TripReserveAmount: f64(reserve),
		OperatingAmount:   f64(operating),
		BusinessAmount:    f64(business),
	}
	return split, nil
}

func f64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
