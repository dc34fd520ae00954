// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roamly/internal/auth"
	"roamly/internal/bookings"
	"roamly/internal/gateway"
	"roamly/internal/payments"
	"roamly/internal/shared/config"
	"roamly/internal/shared/database"
	"roamly/internal/tours"
	"roamly/pkg/cache"
	"roamly/pkg/logger"
	"roamly/pkg/ratelimit"
)

// Router holds all route dependencies
type Router struct {
	config      *config.Config
	db          *database.DB
	cache       cache.Service
	rateLimiter *ratelimit.RateLimiter
	notifier    payments.Notifier
	logger      *logger.Logger

	// exposed for the background sweep job
	BookingService bookings.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, cacheService cache.Service, rateLimiter *ratelimit.RateLimiter, notifier payments.Notifier) *Router {
	return &Router{
		config:      cfg,
		db:          db,
		cache:       cacheService,
		rateLimiter: rateLimiter,
		notifier:    notifier,
		logger:      logger.GetDefault(),
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupTourRoutes(api)
		r.setupBookingAndPaymentRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "roamly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "roamly-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController, r.config)

	if r.rateLimiter != nil {
		authRouter.SetupRoutes(rg, ratelimit.Middleware(r.rateLimiter, ratelimit.ClassAuth))
	} else {
		authRouter.SetupRoutes(rg)
	}
}

// setupTourRoutes configures the public tour read surface
func (r *Router) setupTourRoutes(rg *gin.RouterGroup) {
	tourRepo := tours.NewRepository(r.db.GetPostgreSQL())
	tourController := tours.NewController(tourRepo, r.cache)
	tours.SetupTourRoutes(rg, tourController)
}

// setupBookingAndPaymentRoutes wires the reconciliation engine: bookings,
// gateway client, payments service, and their routes.
func (r *Router) setupBookingAndPaymentRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	bookingService := bookings.NewService(bookingRepo)
	bookingController := bookings.NewController(bookingService)
	bookings.SetupBookingRoutes(rg, bookingController, r.config)
	r.BookingService = bookingService

	tourRepo := tours.NewRepository(r.db.GetPostgreSQL())
	gatewayClient := gateway.NewClient(r.config)

	paymentRepo := payments.NewRepository(r.db.GetPostgreSQL())
	paymentService := payments.NewService(
		paymentRepo,
		bookingService,
		tourRepo,
		gatewayClient,
		r.cache,
		r.notifier,
		r.config,
		r.logger,
	)
	paymentController := payments.NewController(paymentService)
	payments.SetupPaymentRoutes(rg, paymentController, r.config, r.rateLimiter)
}
