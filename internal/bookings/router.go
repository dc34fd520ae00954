package bookings

import (
	"roamly/internal/shared/config"
	"roamly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	// Booking routes
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuthWithConfig(cfg))
	{
		bookings.GET("/:id", controller.GetBooking)            // GET /api/v1/bookings/:id
		bookings.POST("/:id/cancel", controller.CancelBooking) // POST /api/v1/bookings/:id/cancel
	}

	// Admin listing across all users
	admin := rg.Group("/bookings")
	admin.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireRole("ADMIN"))
	{
		admin.GET("", controller.GetAllBookings) // GET /api/v1/bookings
	}

	// User-specific booking routes
	users := rg.Group("/users")
	users.Use(middleware.JWTAuthWithConfig(cfg))
	{
		users.GET("/bookings", controller.GetUserBookings) // GET /api/v1/users/bookings
	}
}

// Route definitions for reference:
//
// BOOKING RETRIEVAL
// GET    /api/v1/bookings/:id                         - Get specific booking (owner or admin)
//
// BOOKING CANCELLATION
// POST   /api/v1/bookings/:id/cancel                  - Cancel a booking still pending payment
//
// USER BOOKINGS
// GET    /api/v1/users/bookings?page=1&limit=10       - Get user's bookings with pagination
//
// Key flow:
// 1. User creates an order with POST /payments/orders (booking opens PENDING_PAYMENT)
// 2. Gateway pushes payment.captured to POST /payments/webhook
// 3. Reconciliation transitions Payment -> CAPTURED, Booking -> CONFIRMED atomically
// 4. User can view booking with GET /bookings/:id
