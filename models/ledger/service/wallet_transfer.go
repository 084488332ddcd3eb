package service

import (
	"context"
	"fmt"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	istore "github.com/TrekLedger/trek-ledger-backend/internal/store"
	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/TrekLedger/trek-ledger-backend/pkg/valueobjects"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

// WalletTransferService validates and executes transfers between a single
// trip's three wallets.
type WalletTransferService struct {
	ledger istore.LedgerStore
	cache  BalanceCache
}

func NewWalletTransferService(ledger istore.LedgerStore, cache BalanceCache) *WalletTransferService {
	return &WalletTransferService{ledger: ledger, cache: cache}
}

// IsWalletTransferAllowed enforces the allowed-path graph for trip wallets.
// The trip reserve can only be a source, never a destination: it stays locked
// until completion releases it.
func IsWalletTransferAllowed(from, to types.Wallet) bool {
	return to != types.WalletTripReserve && from != to
}

// WalletTransferImpact derives the profit effect of a transfer from its path.
// It is a pure function of the path and amount.
func WalletTransferImpact(from, to types.Wallet, amount float64) types.TransferImpact {
	switch {
	case from == types.WalletTripReserve:
		return types.TransferImpact{
			ImpactType:   types.ImpactBorrowedFromReserve,
			ProfitChange: -amount,
			Warning:      "This borrows from the trip reserve and reduces future profit.",
		}
	case from == types.WalletTripBalance && to == types.WalletBusinessAccount:
		return types.TransferImpact{
			ImpactType:   types.ImpactReducedTripBalance,
			ProfitChange: -amount,
			Warning:      "This reduces the trip's leftover balance and its expected profit.",
		}
	case from == types.WalletBusinessAccount:
		return types.TransferImpact{
			ImpactType:   types.ImpactBusinessSubsidy,
			ProfitChange: 0,
		}
	default:
		return types.TransferImpact{
			ImpactType:   types.ImpactAddedToTripBalance,
			ProfitChange: 0,
		}
	}
}

// walletTransferNote builds the deterministic human-readable audit note.
func walletTransferNote(from, to types.Wallet, amount, profitChange float64) string {
	note := fmt.Sprintf("Moved %.2f from %s to %s", amount, from, to)
	if profitChange != 0 {
		note += fmt.Sprintf(" (profit impact %.2f)", profitChange)
	}
	return note
}

// Preview computes the impact of a prospective transfer without executing it.
func (s *WalletTransferService) Preview(from, to types.Wallet, amount float64) (*types.TransferImpact, error) {
	if err := validateWalletPath(from, to); err != nil {
		return nil, err
	}
	money, err := valueobjects.NewPositiveMoney(amount)
	if err != nil {
		return nil, err
	}
	impact := WalletTransferImpact(from, to, money.Float64())
	return &impact, nil
}

// Execute validates and commits a wallet transfer. The balance update and the
// audit row are written in one transaction against the locked trip row; if
// either fails the transfer is not visible.
func (s *WalletTransferService) Execute(ctx context.Context, userID, tripID string, from, to types.Wallet, amount float64) (*types.WalletTransfer, error) {
	log := logger.GetLogger()

	if err := validateWalletPath(from, to); err != nil {
		return nil, err
	}
	money, err := valueobjects.NewPositiveMoney(amount)
	if err != nil {
		return nil, err
	}
	amt := money.Float64()

	transfer, err := s.ledger.ExecuteWalletTransfer(ctx, userID, tripID, func(trip *types.Trip) (*istore.WalletTransferPlan, error) {
		if trip.Status.IsTerminal() {
			return nil, apperrors.ValidationFailed(
				"trip is closed",
				fmt.Sprintf("cannot transfer funds on a %s trip", trip.Status),
			)
		}

		available := walletBalance(trip, from)
		if amt > available {
			return nil, apperrors.InsufficientBalance(from.String(), available, amt)
		}

		impact := WalletTransferImpact(from, to, amt)
		plan := &istore.WalletTransferPlan{
			Transfer: types.WalletTransfer{
				UserID:       userID,
				TripID:       tripID,
				FromWallet:   from,
				ToWallet:     to,
				Amount:       amt,
				ImpactType:   impact.ImpactType,
				ProfitChange: impact.ProfitChange,
				Note:         walletTransferNote(from, to, amt, impact.ProfitChange),
			},
			NewReserve:   trip.TripReserveBalance,
			NewOperating: trip.OperatingAccount,
			NewBusiness:  trip.BusinessAccount,
		}
		applyWalletDelta(plan, from, -amt)
		applyWalletDelta(plan, to, amt)
		return plan, nil
	})
	if err != nil {
		return nil, err
	}

	invalidateBalances(ctx, s.cache, userID)
	log.Infow("Executed wallet transfer",
		"tripId", tripID,
		"from", from,
		"to", to,
		"amount", amt,
		"impactType", transfer.ImpactType,
	)
	return transfer, nil
}

// ListTransfers returns a trip's wallet transfer history.
func (s *WalletTransferService) ListTransfers(ctx context.Context, userID, tripID string) ([]types.WalletTransfer, error) {
	return s.ledger.ListWalletTransfers(ctx, userID, tripID)
}

func validateWalletPath(from, to types.Wallet) error {
	if !from.IsValid() || !to.IsValid() {
		return apperrors.ValidationFailed(
			"invalid wallet",
			fmt.Sprintf("wallets must be one of %s, %s, %s",
				types.WalletTripReserve, types.WalletTripBalance, types.WalletBusinessAccount),
		)
	}
	if !IsWalletTransferAllowed(from, to) {
		return apperrors.TransferNotAllowed(from.String(), to.String())
	}
	return nil
}

func walletBalance(trip *types.Trip, w types.Wallet) float64 {
	switch w {
	case types.WalletTripReserve:
		return trip.TripReserveBalance
	case types.WalletTripBalance:
		return trip.OperatingAccount
	case types.WalletBusinessAccount:
		return trip.BusinessAccount
	default:
		return 0
	}
}

func applyWalletDelta(plan *istore.WalletTransferPlan, w types.Wallet, delta float64) {
	switch w {
	case types.WalletTripReserve:
		plan.NewReserve += delta
	case types.WalletTripBalance:
		plan.NewOperating += delta
	case types.WalletBusinessAccount:
		plan.NewBusiness += delta
	}
}
