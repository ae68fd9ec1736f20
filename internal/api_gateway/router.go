package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mlandesman/SAMS-sub008/internal/api_gateway/handler"
	"github.com/mlandesman/SAMS-sub008/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	unitHandler *handler.UnitHandler,
	creditHandler *handler.CreditHandler,
	paymentHandler *handler.PaymentHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Unit and bill operations
		units := v1.Group("/units")
		{
			units.POST("", unitHandler.Create)
			units.GET("/:id", unitHandler.GetByID)
			units.POST("/:id/bills", unitHandler.CreateBill)
			units.GET("/:id/bills", unitHandler.ListBills)
			units.GET("/:id/payments", paymentHandler.GetByUnitID)
			units.GET("/:id/settlement/preview", paymentHandler.Preview)

			// Credit ledger administration
			credit := units.Group("/:id/credit")
			{
				credit.GET("", creditHandler.GetLedger)
				credit.POST("/adjustments", creditHandler.AddAdjustment)
				credit.PATCH("/entries/:entry_id", creditHandler.UpdateEntry)
				credit.DELETE("/transactions/:transaction_id", creditHandler.DeleteByTransaction)
				credit.POST("/rollover", creditHandler.Rollover)
			}
		}

		// Payment operations
		payments := v1.Group("/payments")
		{
			payments.POST("", paymentHandler.Submit)
			payments.GET("/:id", paymentHandler.GetByID)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
