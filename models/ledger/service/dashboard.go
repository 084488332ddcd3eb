package service

import (
	"context"

	istore "github.com/TrekLedger/trek-ledger-backend/internal/store"
	"github.com/TrekLedger/trek-ledger-backend/pkg/finance"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

// DashboardSummary combines the legacy 30/70 fund-separation view with the
// five-bucket balances. The two models coexist and share no state.
type DashboardSummary struct {
	Separation finance.FundSeparation `json:"separation"`
	Buckets    types.GlobalBalances   `json:"buckets"`
}

// DashboardService produces the dashboard summary.
type DashboardService struct {
	ledger istore.LedgerStore
}

func NewDashboardService(ledger istore.LedgerStore) *DashboardService {
	return &DashboardService{ledger: ledger}
}

// Summary computes both financial views from one ledger snapshot. Revenue for
// the 30/70 view is total advances received; expenses cover both trip and
// business expenses.
func (s *DashboardService) Summary(ctx context.Context, userID string) (*DashboardSummary, error) {
	snap, err := s.ledger.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	separation := finance.Separate(
		snap.AdvanceTotal,
		snap.TripExpensesTotal+snap.BusinessExpensesTotal,
		snap.WithdrawalsTotal,
	)

	return &DashboardSummary{
		Separation: separation,
		Buckets:    ComputeGlobalBalances(snap),
	}, nil
}
