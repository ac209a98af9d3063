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

	"concertly/api/routes"
	"concertly/internal/notifications"
	"concertly/internal/scheduler"
	"concertly/internal/shared/config"
	"concertly/internal/shared/database"
	"concertly/internal/shared/validation"
	"concertly/pkg/cache"
	"concertly/pkg/keylock"
	"concertly/pkg/logger"
	"concertly/pkg/ratelimit"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		appLogger.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	if err := validation.RegisterCustomValidators(); err != nil {
		appLogger.Error("failed to register validators", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.InitDB(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to initialize databases", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	locks := keylock.New()
	cacheService := cache.NewService(db.GetRedis())

	// Rate limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedis(), &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			AuthRequests:    cfg.RateLimit.AuthRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	}

	// Notification pipeline
	notificationService, consumer, err := buildNotificationService(cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to initialize notifications", slog.Any("error", err))
		os.Exit(1)
	}
	defer notificationService.Close()

	notificationCtx, notificationCancel := context.WithCancel(context.Background())
	defer notificationCancel()
	if consumer != nil {
		if err := consumer.Start(notificationCtx, cfg.Kafka.ConsumerWorkers); err != nil {
			appLogger.Error("failed to start notification consumers", slog.Any("error", err))
			os.Exit(1)
		}
		defer consumer.Stop()
	}

	engine, appRouter := setupRouter(cfg, db, locks, cacheService, notificationService, rateLimiter, appLogger)

	// Background jobs
	if cfg.Scheduler.Enabled {
		schedulerRepo := scheduler.NewRepository(db.GetPostgreSQL())
		jobs := scheduler.NewJobProcessor(schedulerRepo, notificationService, appRouter.ReservationService(), &cfg.Scheduler, appLogger)
		jobs.Start(notificationCtx)
		defer jobs.Stop()
	}

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
			slog.Bool("kafka", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("server exited gracefully")
}

func buildNotificationService(cfg *config.Config, log *logger.Logger) (notifications.Service, notifications.Consumer, error) {
	emailService, err := notifications.NewEmailService(&cfg.Email, log)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.Kafka.Enabled {
		return notifications.NewService(nil, emailService, log), nil, nil
	}

	producer, err := notifications.NewKafkaProducer(&cfg.Kafka, log)
	if err != nil {
		return nil, nil, err
	}
	consumer, err := notifications.NewKafkaConsumer(&cfg.Kafka, emailService, log)
	if err != nil {
		return nil, nil, err
	}
	return notifications.NewService(producer, emailService, log), consumer, nil
}

func setupRouter(cfg *config.Config, db *database.DB, locks *keylock.Registry, cacheService cache.Service, notificationService notifications.Service, rateLimiter *ratelimit.RateLimiter, appLogger *logger.Logger) (*gin.Engine, *routes.Router) {
	engine := gin.New()
	engine.Use(requestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter := routes.NewRouter(cfg, db, locks, cacheService, notificationService, appLogger)
	appRouter.SetupRoutes(engine)

	return engine, appRouter
}

func requestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
	}
}
