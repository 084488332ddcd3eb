package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	"github.com/TrekLedger/trek-ledger-backend/middleware"
	"github.com/TrekLedger/trek-ledger-backend/models/ledger/service"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

type DashboardHandler struct {
	dashboard *service.DashboardService
	balances  *service.BalanceService
	settings  *service.SettingsService
}

func NewDashboardHandler(dashboard *service.DashboardService, balances *service.BalanceService, settings *service.SettingsService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, balances: balances, settings: settings}
}

// SummaryHandler returns both financial views: the 30/70 fund separation and
// the five-bucket balances.
func (h *DashboardHandler) SummaryHandler(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// BalancesHandler returns the four global bucket balances.
func (h *DashboardHandler) BalancesHandler(c *gin.Context) {
	balances, err := h.balances.GlobalBalances(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, balances)
}

// GetSettingsHandler returns the user's settings.
func (h *DashboardHandler) GetSettingsHandler(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettingsHandler applies a settings update.
func (h *DashboardHandler) UpdateSettingsHandler(c *gin.Context) {
	var update types.SettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	settings, err := h.settings.Update(c.Request.Context(), middleware.GetUserID(c), update)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
