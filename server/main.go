package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"roamly/api/routes"
	"roamly/internal/bookings"
	"roamly/internal/notifications"
	"roamly/internal/payments"
	"roamly/internal/shared/config"
	"roamly/internal/shared/database"
	"roamly/internal/tours"
	"roamly/pkg/cache"
	"roamly/pkg/logger"
	"roamly/pkg/ratelimit"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)

	// Missing gateway credentials means every order and webhook would fail
	// at runtime. Refuse to start instead.
	if err := cfg.ValidateGateway(); err != nil {
		appLogger.Error("Invalid gateway configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize DB
	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Redis-backed cache service (webhook dedup fast path, tour cache)
	var cacheService cache.Service
	if db.GetRedis() != nil {
		cacheService = cache.NewService(db.GetRedis())
	}

	// Initialize Rate Limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.GetRedis() != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedis(), &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			AuthRequests:    cfg.RateLimit.AuthRequests,
			OrderRequests:   cfg.RateLimit.OrderRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("order_requests", cfg.RateLimit.OrderRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Post-confirmation notifier: Kafka pipeline when enabled, inline SMTP
	// fallback otherwise. Either way it is fire-and-forget from the
	// reconciliation engine's point of view.
	notifier, notifierCleanup := setupNotifier(cfg, db, appLogger)
	defer notifierCleanup()

	// Setup router
	appRouter := routes.NewRouter(cfg, db, cacheService, rateLimiter, notifier)
	engine := setupEngine(cfg, appRouter)

	// Background sweep for bookings stuck in PENDING_PAYMENT
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	if cfg.Sweep.Enabled {
		sweep := bookings.NewSweepProcessor(appRouter.BookingService, &bookings.SweepConfig{
			Interval:   cfg.Sweep.Interval,
			PendingTTL: cfg.Sweep.PendingTTL,
			BatchSize:  cfg.Sweep.BatchSize,
		})
		sweep.Start(sweepCtx)
		defer sweep.Stop()
	}

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", cfg.APIVersion),
			slog.Bool("redis_cache", cacheService != nil),
			slog.Bool("rate_limiting", rateLimiter != nil),
			slog.Bool("kafka_notifier", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

// setupNotifier wires the confirmation pipeline and returns it with a
// cleanup function for shutdown.
func setupNotifier(cfg *config.Config, db *database.DB, appLogger *logger.Logger) (payments.Notifier, func()) {
	toursRepo := tours.NewRepository(db.GetPostgreSQL())

	var sender *notifications.ConfirmationSender
	if cfg.Email.SMTPHost != "" {
		smtpService, err := notifications.NewSMTPEmailService(notifications.NewSMTPConfig(cfg))
		if err != nil {
			appLogger.Error("Failed to initialize SMTP service", slog.Any("error", err))
		} else {
			sender = notifications.NewConfirmationSender(smtpService, cfg.Admin.Emails)
		}
	} else {
		appLogger.Info("SMTP not configured - confirmation emails disabled")
	}

	if !cfg.Kafka.Enabled {
		return notifications.NewNotifier(nil, sender, toursRepo), func() {}
	}

	producerConfig := notifications.DefaultKafkaProducerConfig()
	producerConfig.Brokers = cfg.Kafka.Brokers
	producerConfig.NotificationTopic = cfg.Kafka.NotificationTopic

	producer, err := notifications.NewKafkaJobProducer(producerConfig)
	if err != nil {
		appLogger.Error("Failed to create Kafka producer, falling back to inline delivery", slog.Any("error", err))
		return notifications.NewNotifier(nil, sender, toursRepo), func() {}
	}

	cleanup := func() {
		if err := producer.Close(); err != nil {
			appLogger.Error("Error closing Kafka producer", slog.Any("error", err))
		}
	}

	// Consumer side: drain the topic and deliver the emails
	if sender != nil {
		consumerConfig := notifications.DefaultConsumerConfig()
		consumerConfig.Brokers = cfg.Kafka.Brokers
		consumerConfig.GroupID = cfg.Kafka.ConsumerGroup
		consumerConfig.Topics = []string{cfg.Kafka.NotificationTopic}

		consumer, err := notifications.NewKafkaJobConsumer(consumerConfig, sender)
		if err != nil {
			appLogger.Error("Failed to create Kafka consumer", slog.Any("error", err))
		} else {
			consumerCtx, consumerCancel := context.WithCancel(context.Background())
			if err := consumer.StartConsumers(consumerCtx, 2); err != nil {
				appLogger.Error("Failed to start confirmation workers", slog.Any("error", err))
				consumerCancel()
			} else {
				prevCleanup := cleanup
				cleanup = func() {
					consumerCancel()
					if err := consumer.Stop(); err != nil {
						appLogger.Error("Error stopping confirmation consumer", slog.Any("error", err))
					}
					prevCleanup()
				}
			}
		}
	}

	return notifications.NewNotifier(producer, sender, toursRepo), cleanup
}

func setupEngine(cfg *config.Config, appRouter *routes.Router) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	// Built-in middleware: logs requests + recovers from panics
	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Signature"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	appRouter.SetupRoutes(engine)

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}
