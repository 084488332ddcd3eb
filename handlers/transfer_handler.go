package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	"github.com/TrekLedger/trek-ledger-backend/middleware"
	"github.com/TrekLedger/trek-ledger-backend/models/ledger/service"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

type TransferHandler struct {
	wallet *service.WalletTransferService
	global *service.GlobalTransferService
}

func NewTransferHandler(wallet *service.WalletTransferService, global *service.GlobalTransferService) *TransferHandler {
	return &TransferHandler{wallet: wallet, global: global}
}

type walletTransferRequest struct {
	FromWallet types.Wallet `json:"fromWallet" binding:"required"`
	ToWallet   types.Wallet `json:"toWallet" binding:"required"`
	Amount     float64      `json:"amount" binding:"required"`
}

// CreateWalletTransferHandler executes a transfer between the trip's wallets.
func (h *TransferHandler) CreateWalletTransferHandler(c *gin.Context) {
	var req walletTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	transfer, err := h.wallet.Execute(c.Request.Context(),
		middleware.GetUserID(c), c.Param("id"),
		req.FromWallet, req.ToWallet, req.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, transfer)
}

// PreviewWalletTransferHandler returns the impact of a prospective wallet
// transfer without executing it.
func (h *TransferHandler) PreviewWalletTransferHandler(c *gin.Context) {
	var req walletTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	impact, err := h.wallet.Preview(req.FromWallet, req.ToWallet, req.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, impact)
}

// ListWalletTransfersHandler lists a trip's wallet transfer history.
func (h *TransferHandler) ListWalletTransfersHandler(c *gin.Context) {
	transfers, err := h.wallet.ListTransfers(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfers": transfers})
}

type globalTransferRequest struct {
	FromBucket types.Bucket `json:"fromBucket" binding:"required"`
	ToBucket   types.Bucket `json:"toBucket" binding:"required"`
	Amount     float64      `json:"amount" binding:"required"`
}

// CreateGlobalTransferHandler executes a transfer between the global buckets.
func (h *TransferHandler) CreateGlobalTransferHandler(c *gin.Context) {
	var req globalTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	transfer, err := h.global.Execute(c.Request.Context(),
		middleware.GetUserID(c), req.FromBucket, req.ToBucket, req.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, transfer)
}

// PreviewGlobalTransferHandler returns the impact of a prospective global
// transfer without executing it.
func (h *TransferHandler) PreviewGlobalTransferHandler(c *gin.Context) {
	var req globalTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	impact, err := h.global.Preview(req.FromBucket, req.ToBucket, req.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, impact)
}

// ListGlobalTransfersHandler lists the user's global transfer history.
func (h *TransferHandler) ListGlobalTransfersHandler(c *gin.Context) {
	transfers, err := h.global.ListTransfers(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfers": transfers})
}
