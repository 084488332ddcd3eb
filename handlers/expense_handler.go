package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	"github.com/TrekLedger/trek-ledger-backend/middleware"
	"github.com/TrekLedger/trek-ledger-backend/models/ledger/service"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

type ExpenseHandler struct {
	expenses *service.ExpenseService
}

func NewExpenseHandler(expenses *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// CreateTripExpenseHandler records a trip expense. A reserve shortfall comes
// back as a 409 soft warning; resubmitting with override=true proceeds.
func (h *ExpenseHandler) CreateTripExpenseHandler(c *gin.Context) {
	var params types.CreateExpenseParams
	if err := c.ShouldBindJSON(&params); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}
	params.TripID = c.Param("id")

	expense, err := h.expenses.RecordTripExpense(c.Request.Context(), middleware.GetUserID(c), params)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// ListTripExpensesHandler lists a trip's expenses.
func (h *ExpenseHandler) ListTripExpensesHandler(c *gin.Context) {
	expenses, err := h.expenses.ListTripExpenses(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// DeleteTripExpenseHandler deletes a trip expense while the trip is not
// completed.
func (h *ExpenseHandler) DeleteTripExpenseHandler(c *gin.Context) {
	if err := h.expenses.DeleteTripExpense(c.Request.Context(), middleware.GetUserID(c), c.Param("expenseId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateBusinessExpenseHandler records a business overhead expense behind the
// business reserve guard.
func (h *ExpenseHandler) CreateBusinessExpenseHandler(c *gin.Context) {
	var params types.CreateBusinessExpenseParams
	if err := c.ShouldBindJSON(&params); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	expense, err := h.expenses.RecordBusinessExpense(c.Request.Context(), middleware.GetUserID(c), params)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// ListBusinessExpensesHandler lists the user's business expenses.
func (h *ExpenseHandler) ListBusinessExpensesHandler(c *gin.Context) {
	expenses, err := h.expenses.ListBusinessExpenses(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}
