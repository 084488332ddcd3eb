package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TrekLedger/trek-ledger-backend/config"
	"github.com/TrekLedger/trek-ledger-backend/handlers"
	"github.com/TrekLedger/trek-ledger-backend/middleware"
)

// Dependencies holds everything required to wire the route tree.
type Dependencies struct {
	Config            *config.Config
	TripHandler       *handlers.TripHandler
	PaymentHandler    *handlers.PaymentHandler
	ExpenseHandler    *handlers.ExpenseHandler
	TransferHandler   *handlers.TransferHandler
	WithdrawalHandler *handlers.WithdrawalHandler
	DashboardHandler  *handlers.DashboardHandler
	HealthHandler     *handlers.HealthHandler
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Global middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	// Health and metrics routes do not require auth
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Versioned API group, everything below requires a valid token
	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(&deps.Config.Server))
	{
		tripRoutes := v1.Group("/trips")
		{
			tripRoutes.POST("", deps.TripHandler.CreateTripHandler)
			tripRoutes.GET("", deps.TripHandler.ListTripsHandler)
			tripRoutes.GET("/:id", deps.TripHandler.GetTripHandler)
			tripRoutes.PUT("/:id", deps.TripHandler.UpdateTripHandler)
			tripRoutes.POST("/:id/complete", deps.TripHandler.CompleteTripHandler)
			tripRoutes.GET("/:id/wallets", deps.TripHandler.TripWalletsHandler)

			// Advance payments are recorded against a trip
			tripRoutes.POST("/:id/payments", deps.PaymentHandler.CreatePaymentHandler)
			tripRoutes.GET("/:id/payments", deps.PaymentHandler.ListTripPaymentsHandler)
			tripRoutes.POST("/:id/payments/preview", deps.PaymentHandler.PreviewSplitHandler)

			tripRoutes.POST("/:id/expenses", deps.ExpenseHandler.CreateTripExpenseHandler)
			tripRoutes.GET("/:id/expenses", deps.ExpenseHandler.ListTripExpensesHandler)
			tripRoutes.DELETE("/:id/expenses/:expenseId", deps.ExpenseHandler.DeleteTripExpenseHandler)

			// Intra-trip wallet transfers
			tripRoutes.POST("/:id/transfers", deps.TransferHandler.CreateWalletTransferHandler)
			tripRoutes.GET("/:id/transfers", deps.TransferHandler.ListWalletTransfersHandler)
			tripRoutes.POST("/:id/transfers/preview", deps.TransferHandler.PreviewWalletTransferHandler)
		}

		v1.GET("/payments", deps.PaymentHandler.ListPaymentsHandler)

		v1.POST("/business-expenses", deps.ExpenseHandler.CreateBusinessExpenseHandler)
		v1.GET("/business-expenses", deps.ExpenseHandler.ListBusinessExpensesHandler)

		v1.POST("/withdrawals", deps.WithdrawalHandler.CreateWithdrawalHandler)
		v1.GET("/withdrawals", deps.WithdrawalHandler.ListWithdrawalsHandler)
		v1.DELETE("/withdrawals/:withdrawalId", deps.WithdrawalHandler.DeleteWithdrawalHandler)

		// Cross-bucket transfers between global balances
		v1.POST("/transfers/global", deps.TransferHandler.CreateGlobalTransferHandler)
		v1.GET("/transfers/global", deps.TransferHandler.ListGlobalTransfersHandler)
		v1.POST("/transfers/global/preview", deps.TransferHandler.PreviewGlobalTransferHandler)

		v1.GET("/balances", deps.DashboardHandler.BalancesHandler)
		v1.GET("/dashboard", deps.DashboardHandler.SummaryHandler)

		v1.GET("/settings", deps.DashboardHandler.GetSettingsHandler)
		v1.PUT("/settings", deps.DashboardHandler.UpdateSettingsHandler)
	}

	return r
}
