package payments

import (
	"github.com/gin-gonic/gin"

	"roamly/internal/shared/config"
	"roamly/internal/shared/middleware"
	"roamly/pkg/ratelimit"
)

// SetupPaymentRoutes configures all payment-related routes
func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config, limiter *ratelimit.RateLimiter) {
	payments := rg.Group("/payments")

	// Order creation: authenticated customer, rate limited
	orders := payments.Group("/orders")
	orders.Use(middleware.JWTAuthWithConfig(cfg))
	if limiter != nil {
		orders.Use(ratelimit.Middleware(limiter, ratelimit.ClassOrder))
	}
	{
		orders.POST("", controller.CreateOrder) // POST /api/v1/payments/orders
	}

	// Webhook: public, authenticated by the body signature itself
	payments.POST("/webhook", controller.HandleWebhook) // POST /api/v1/payments/webhook

	// Refund: administrator on the allow-list only
	refunds := payments.Group("/refund")
	refunds.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequirePaymentAdmin(cfg))
	{
		refunds.POST("", controller.Refund) // POST /api/v1/payments/refund
	}
}

// Route definitions for reference:
//
// ORDER CREATION
// POST   /api/v1/payments/orders     - Create gateway order + pending booking
//
// WEBHOOK (gateway-facing, raw body + X-Signature HMAC)
// POST   /api/v1/payments/webhook    - Reconcile capture/failure/refund events
//
// REFUND (admin allow-list)
// POST   /api/v1/payments/refund     - Reverse a captured payment
