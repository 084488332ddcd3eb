package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	"github.com/TrekLedger/trek-ledger-backend/middleware"
	"github.com/TrekLedger/trek-ledger-backend/models/ledger/service"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

type WithdrawalHandler struct {
	withdrawals *service.WithdrawalService
}

func NewWithdrawalHandler(withdrawals *service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals}
}

// CreateWithdrawalHandler records an owner withdrawal against withdrawable
// profit.
func (h *WithdrawalHandler) CreateWithdrawalHandler(c *gin.Context) {
	var params types.CreateWithdrawalParams
	if err := c.ShouldBindJSON(&params); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	withdrawal, err := h.withdrawals.Record(c.Request.Context(), middleware.GetUserID(c), params)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, withdrawal)
}

// ListWithdrawalsHandler lists the user's withdrawals.
func (h *WithdrawalHandler) ListWithdrawalsHandler(c *gin.Context) {
	withdrawals, err := h.withdrawals.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}

// DeleteWithdrawalHandler removes a withdrawal.
func (h *WithdrawalHandler) DeleteWithdrawalHandler(c *gin.Context) {
	if err := h.withdrawals.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("withdrawalId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
