package finance

import "github.com/shopspring/decimal"

// OperatingStatus is the tri-state health classification of the operating
// account in the 30/70 dashboard view.
type OperatingStatus string

const (
	OperatingHealthy  OperatingStatus = "healthy"
	OperatingWarning  OperatingStatus = "warning"
	OperatingCritical OperatingStatus = "critical"
)

// FundSeparation is the period-based 30/70 dashboard summary. It predates the
// five-bucket per-trip model and deliberately shares no state with it.
type FundSeparation struct {
	Revenue            float64         `json:"revenue"`
	ProfitPool         float64         `json:"profitPool"`
	OperatingPool      float64         `json:"operatingPool"`
	OperatingAccount   float64         `json:"operatingAccount"`
	WithdrawableProfit float64         `json:"withdrawableProfit"`
	OperatingStatus    OperatingStatus `json:"operatingStatus"`
}

var (
	profitShare    = decimal.NewFromFloat(0.30)
	operatingShare = decimal.NewFromFloat(0.70)
)

// Separate computes the 30/70 split of revenue into profit and operating
// pools, the resulting operating account after expenses, and the withdrawable
// profit clamped at zero. The operating status thresholds work on the ratio
// operatingAccount/operatingPool: above 0.20 is healthy, above 0.05 is
// warning, anything else (including a non-positive pool) is critical.
func Separate(revenue, totalExpenses, totalWithdrawals float64) FundSeparation {
	rev := decimal.NewFromFloat(revenue)
	profitPool := rev.Mul(profitShare).Round(2)
	operatingPool := rev.Mul(operatingShare).Round(2)
	operatingAccount := operatingPool.Sub(decimal.NewFromFloat(totalExpenses))

	withdrawable := profitPool.Sub(decimal.NewFromFloat(totalWithdrawals))
	if withdrawable.IsNegative() {
		withdrawable = decimal.Zero
	}

	return FundSeparation{
		Revenue:            revenue,
		ProfitPool:         f64(profitPool),
		OperatingPool:      f64(operatingPool),
		OperatingAccount:   f64(operatingAccount),
		WithdrawableProfit: f64(withdrawable),
		OperatingStatus:    classifyOperating(operatingAccount, operatingPool),
	}
}

func classifyOperating(operatingAccount, operatingPool decimal.Decimal) OperatingStatus {
	// Guard against divide-by-zero: an empty or negative pool is critical.
	if !operatingPool.IsPositive() {
		return OperatingCritical
	}
	ratio := operatingAccount.Div(operatingPool)
	switch {
	case ratio.GreaterThan(decimal.NewFromFloat(0.20)):
		return OperatingHealthy
	case ratio.GreaterThan(decimal.NewFromFloat(0.05)):
		return OperatingWarning
	default:
		return OperatingCritical
	}
}
