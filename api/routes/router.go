package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"concertly/internal/analytics"
	"concertly/internal/auth"
	"concertly/internal/concerts"
	"concertly/internal/notifications"
	"concertly/internal/realtime"
	"concertly/internal/reservations"
	"concertly/internal/shared/config"
	"concertly/internal/shared/database"
	"concertly/internal/shared/middleware"
	"concertly/pkg/cache"
	"concertly/pkg/keylock"
	"concertly/pkg/logger"
)

// Router holds all route dependencies.
type Router struct {
	config        *config.Config
	db            *database.DB
	locks         *keylock.Registry
	cache         cache.Service
	notifications notifications.Service
	log           *logger.Logger

	reservationService reservations.Service
}

func NewRouter(cfg *config.Config, db *database.DB, locks *keylock.Registry, cacheSvc cache.Service, notificationSvc notifications.Service, log *logger.Logger) *Router {
	return &Router{
		config:        cfg,
		db:            db,
		locks:         locks,
		cache:         cacheSvc,
		notifications: notificationSvc,
		log:           log,
	}
}

// ReservationService exposes the booking service after SetupRoutes has
// built it, for the scheduler's cleanup job.
func (r *Router) ReservationService() reservations.Service {
	return r.reservationService
}

// SetupRoutes configures all application routes.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	broadcaster := realtime.NewPublisher(r.db.GetRedis(), r.log)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupConcertRoutes(api, broadcaster)
		r.setupReservationRoutes(api, broadcaster)
		r.setupAnalyticsRoutes(api)
	}
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "concertly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "concertly-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config, r.log)
	authController := auth.NewController(authService, r.log)

	auth.SetupRoutes(rg, authController)
}

func (r *Router) setupConcertRoutes(rg *gin.RouterGroup, broadcaster concerts.AvailabilityBroadcaster) {
	concertRepo := concerts.NewRepository(r.db.GetPostgreSQL())
	concertService := concerts.NewService(concertRepo, r.locks, r.cache, broadcaster, r.config, r.log)
	concertController := concerts.NewController(concertService)

	concerts.SetupPublicRoutes(rg, concertController)
	concerts.SetupAdminRoutes(r.adminGroup(rg), concertController)
}

func (r *Router) setupReservationRoutes(rg *gin.RouterGroup, broadcaster reservations.AvailabilityBroadcaster) {
	var notifier reservations.Notifier
	if r.notifications != nil {
		notifier = notifications.NewReservationNotifierAdapter(r.notifications)
	}

	reservationRepo := reservations.NewRepository(r.db.GetPostgreSQL())
	reservationService := reservations.NewService(reservationRepo, r.locks, r.cache, notifier, broadcaster, r.config, r.log)
	reservationController := reservations.NewController(reservationService)

	r.reservationService = reservationService

	public := rg.Group("")
	public.Use(middleware.OptionalGoogleAuth())
	reservations.SetupPublicRoutes(public, reservationController)

	reservations.SetupAdminRoutes(r.adminGroup(rg), reservationController)
}

func (r *Router) setupAnalyticsRoutes(rg *gin.RouterGroup) {
	statsRepo := analytics.NewRepository(r.db.GetPostgreSQL())
	statsService := analytics.NewService(statsRepo)
	statsController := analytics.NewController(statsService)

	analytics.SetupAdminRoutes(r.adminGroup(rg), statsController)
}

func (r *Router) adminGroup(rg *gin.RouterGroup) *gin.RouterGroup {
	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuthWithConfig(&r.config.JWT), middleware.RequireAdmin())
	return admin
}
