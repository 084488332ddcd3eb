// Package handlers exposes the HTTP surface of the ledger engine. Handlers
// bind and sanity-check requests, delegate to the services, and attach errors
// to the gin context for the error handler middleware.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	"github.com/TrekLedger/trek-ledger-backend/logger"
	"github.com/TrekLedger/trek-ledger-backend/middleware"
	"github.com/TrekLedger/trek-ledger-backend/models/ledger/service"
	"github.com/TrekLedger/trek-ledger-backend/types"
)

type TripHandler struct {
	trips      *service.TripService
	completion *service.CompletionService
	balances   *service.BalanceService
}

func NewTripHandler(trips *service.TripService, completion *service.CompletionService, balances *service.BalanceService) *TripHandler {
	return &TripHandler{trips: trips, completion: completion, balances: balances}
}

type createTripRequest struct {
	Name              string     `json:"name" binding:"required"`
	Destination       string     `json:"destination"`
	ReservePercentage float64    `json:"reservePercentage"`
	EstimatedCost     float64    `json:"estimatedCost"`
	StartDate         *time.Time `json:"startDate"`
	EndDate           *time.Time `json:"endDate"`
}

// CreateTripHandler creates a new trip with zeroed wallets.
func (h *TripHandler) CreateTripHandler(c *gin.Context) {
	log := logger.GetLogger()

	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debugw("Invalid create trip request", "error", err)
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	trip := &types.Trip{
		UserID:            middleware.GetUserID(c),
		Name:              req.Name,
		Destination:       req.Destination,
		ReservePercentage: req.ReservePercentage,
		EstimatedCost:     req.EstimatedCost,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
	}

	created, err := h.trips.CreateTrip(c.Request.Context(), trip)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetTripHandler returns a single trip.
func (h *TripHandler) GetTripHandler(c *gin.Context) {
	trip, err := h.trips.GetTrip(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// ListTripsHandler lists the user's trips.
func (h *TripHandler) ListTripsHandler(c *gin.Context) {
	trips, err := h.trips.ListTrips(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// UpdateTripHandler updates trip metadata and non-completion status
// transitions.
func (h *TripHandler) UpdateTripHandler(c *gin.Context) {
	var update types.TripUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	trip, err := h.trips.UpdateTrip(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), update)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// CompleteTripHandler runs the one-way completion transition and returns the
// completion log with the new profit-wallet total.
func (h *TripHandler) CompleteTripHandler(c *gin.Context) {
	result, err := h.completion.Complete(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// TripWalletsHandler returns the trip's three wallet balances.
func (h *TripHandler) TripWalletsHandler(c *gin.Context) {
	wallets, err := h.balances.TripWallets(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, wallets)
}
