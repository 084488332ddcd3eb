package types

import "time"

// Wallet identifies one of the three trip-scoped accounting categories.
type Wallet string

const (
	WalletTripReserve     Wallet = "trip_reserve"
	WalletTripBalance     Wallet = "trip_balance"
	WalletBusinessAccount Wallet = "business_account"
)

// IsValid checks if the wallet is one of the three trip-scoped wallets.
func (w Wallet) IsValid() bool {
	switch w {
	case WalletTripReserve, WalletTripBalance, WalletBusinessAccount:
		return true
	default:
		return false
	}
}

func (w Wallet) String() string {
	return string(w)
}

// ImpactType classifies how a wallet transfer affects the trip's expected
// profit. It is derived from the transfer path, never user-supplied.
type ImpactType string

const (
	ImpactBorrowedFromReserve ImpactType = "borrowed_from_reserve"
	ImpactReducedTripBalance  ImpactType = "reduced_trip_balance"
	ImpactBusinessSubsidy     ImpactType = "business_subsidy"
	ImpactAddedToTripBalance  ImpactType = "added_to_trip_balance"
)

// WalletTransfer is an immutable audit record of money moved between a single
// trip's wallets.
type WalletTransfer struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	TripID       string     `json:"tripId"`
	FromWallet   Wallet     `json:"fromWallet"`
	ToWallet     Wallet     `json:"toWallet"`
	Amount       float64    `json:"amount"`
	ImpactType   ImpactType `json:"impactType"`
	ProfitChange float64    `json:"profitChange"`
	Note         string     `json:"note,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Bucket identifies one of the four global accounting categories.
type Bucket string

const (
	BucketProfitWithdrawable Bucket = "profit_withdrawable"
	BucketBusinessAccount    Bucket = "business_account"
	BucketTripBalances       Bucket = "trip_balances"
	BucketTripReserves       Bucket = "trip_reserves"
)

// IsValid checks if the bucket is one of the four global buckets.
func (b Bucket) IsValid() bool {
	switch b {
	case BucketProfitWithdrawable, BucketBusinessAccount, BucketTripBalances, BucketTripReserves:
		return true
	default:
		return false
	}
}

func (b Bucket) String() string {
	return string(b)
}

// GlobalTransfer is an immutable audit record of money moved between global
// buckets. Bucket balances are derived aggregates, so the row itself is the
// transfer's only durable side effect.
type GlobalTransfer struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	FromBucket Bucket    `json:"fromBucket"`
	ToBucket   Bucket    `json:"toBucket"`
	Amount     float64   `json:"amount"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TransferImpact describes the profit effect and warning (if any) of a
// prospective transfer before it is executed.
type TransferImpact struct {
	ImpactType   ImpactType `json:"impactType,omitempty"`
	ProfitChange float64    `json:"profitChange"`
	Warning      string     `json:"warning,omitempty"`
}

// GlobalBalances holds the four derived global bucket balances.
type GlobalBalances struct {
	ProfitWithdrawable float64 `json:"profitWithdrawable"`
	BusinessAccount    float64 `json:"businessAccount"`
	TripBalances       float64 `json:"tripBalances"`
	TripReserves       float64 `json:"tripReserves"`
}

// Balance returns the balance of the named bucket.
func (g GlobalBalances) Balance(b Bucket) float64 {
	switch b {
	case BucketProfitWithdrawable:
		return g.ProfitWithdrawable
	case BucketBusinessAccount:
		return g.BusinessAccount
	case BucketTripBalances:
		return g.TripBalances
	case BucketTripReserves:
		return g.TripReserves
	default:
		return 0
	}
}

// LedgerSnapshot is the raw ledger state the balance aggregator folds into
// the four global buckets. Transfer slices are ordered oldest first; the fold
// replays them in that order.
type LedgerSnapshot struct {
	AdvanceTotal          float64          `json:"advanceTotal"`          // Σ amount over all advance payments
	AdvanceBusinessTotal  float64          `json:"advanceBusinessTotal"`  // Σ business_amount over all advance payments
	ReleasedProfitTotal   float64          `json:"releasedProfitTotal"`   // Σ released_profit over completed trips
	WithdrawalsTotal      float64          `json:"withdrawalsTotal"`      // Σ withdrawals
	TripExpensesTotal     float64          `json:"tripExpensesTotal"`     // Σ trip expenses
	BusinessExpensesTotal float64          `json:"businessExpensesTotal"` // Σ business expenses
	ActiveOperatingTotal  float64          `json:"activeOperatingTotal"`  // Σ operating_account over upcoming/in_progress trips
	ActiveReserveTotal    float64          `json:"activeReserveTotal"`    // Σ trip_reserve_balance over upcoming/in_progress trips
	WalletTransfers       []WalletTransfer `json:"walletTransfers"`
	GlobalTransfers       []GlobalTransfer `json:"globalTransfers"`
}
