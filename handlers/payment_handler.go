package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	"github.com/TrekLedger/trek-ledger-backend/middleware"
	"github.com/TrekLedger/trek-ledger-backend/models/ledger/service"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CreatePaymentHandler records an advance payment on the trip from the route,
// splitting it at the trip's current reserve percentage.
func (h *PaymentHandler) CreatePaymentHandler(c *gin.Context) {
	var params types.CreateAdvancePaymentParams
	if err := c.ShouldBindJSON(&params); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}
	params.TripID = c.Param("id")

	payment, err := h.payments.RecordAdvance(c.Request.Context(), middleware.GetUserID(c), params)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// ListTripPaymentsHandler lists the payments of one trip.
func (h *PaymentHandler) ListTripPaymentsHandler(c *gin.Context) {
	tripID := c.Param("id")
	payments, err := h.payments.ListAdvances(c.Request.Context(), middleware.GetUserID(c), &tripID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// ListPaymentsHandler lists all the user's advance payments.
func (h *PaymentHandler) ListPaymentsHandler(c *gin.Context) {
	payments, err := h.payments.ListAdvances(c.Request.Context(), middleware.GetUserID(c), nil)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

type previewSplitRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// PreviewSplitHandler runs the split calculator without persisting, for live
// form previews.
func (h *PaymentHandler) PreviewSplitHandler(c *gin.Context) {
	var req previewSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	split, err := h.payments.PreviewSplit(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, split)
}
