package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"shuttle/internal/handler"
	"shuttle/internal/metrics"
	"shuttle/internal/middleware"
	internalRedis "shuttle/internal/redis"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	BookingHandler  *handler.BookingHandler
	DriverHandler   *handler.DriverHandler
	SettingsHandler *handler.SettingsHandler
	WebhookHandler  *handler.WebhookHandler
	ResponseStore   internalRedis.ResponseStore
	NewRelicApp     *newrelic.Application
	Logger          *zap.Logger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.Logger(deps.Logger))
	router.Use(metrics.Middleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check and metrics.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Tracking link sent to requesters when a booking is accepted.
	router.GET("/track/:id", deps.BookingHandler.PickupETA)

	// Messaging channel webhook. Forward the provider message id as
	// Idempotency-Key to deduplicate redeliveries.
	idempotent := middleware.IdempotencyMiddleware(deps.ResponseStore, deps.Logger)
	router.POST("/webhook/messages", idempotent, deps.WebhookHandler.Receive)

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.Use(idempotent)
	{
		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.Create)
			bookings.GET("", deps.BookingHandler.List)
			bookings.GET("/:id", deps.BookingHandler.Get)
			bookings.GET("/:id/eta", deps.BookingHandler.PickupETA)
			bookings.POST("/:id/accept", deps.BookingHandler.Accept)
			bookings.POST("/:id/decline", deps.BookingHandler.Decline)
			bookings.POST("/:id/decision", deps.BookingHandler.Decide)
		}

		v1.POST("/quotes", deps.BookingHandler.Quote)
		v1.GET("/requesters/:contact/bookings", deps.BookingHandler.ListByContact)

		// Driver routes.
		driver := v1.Group("/driver")
		{
			driver.POST("/location", deps.DriverHandler.UpdateLocation)
			driver.GET("/location", deps.DriverHandler.GetLocation)
			driver.GET("/status", deps.DriverHandler.GetStatus)
			driver.GET("/active-booking", deps.DriverHandler.GetActiveBooking)
		}

		// Settings routes.
		settings := v1.Group("/settings")
		{
			settings.GET("/tariff", deps.SettingsHandler.GetTariff)
			settings.PATCH("/tariff", deps.SettingsHandler.UpdateTariff)
		}
	}

	return router
}
