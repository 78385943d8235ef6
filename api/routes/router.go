// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"gameon/internal/auth"
	"gameon/internal/events"
	"gameon/internal/invites"
	"gameon/internal/memberships"
	"gameon/internal/notifications"
	"gameon/internal/shared/config"
	"gameon/internal/shared/database"
	"gameon/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config              *config.Config
	db                  *database.DB
	notificationService notifications.Service

	// Cross-feature services, populated during setup
	eventService  events.Service
	inviteService invites.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, notificationService notifications.Service) *Router {
	return &Router{
		config:              cfg,
		db:                  db,
		notificationService: notificationService,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Setup auth routes
		r.setupAuthRoutes(api)

		// Event routes come first: the membership and invite layers depend
		// on the event service
		r.setupEventRoutes(api)

		// Invite routes (membership eligibility consults the invite service)
		r.setupInviteRoutes(api)

		// Membership routes
		r.setupMembershipRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		// Perform health checks
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "gameon-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "gameon-backend",
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
	authRouter := auth.NewRouter(authController)

	authRouter.SetupRoutes(rg)
}

// setupEventRoutes configures event management routes
func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	eventService := events.NewService(eventRepo)

	// Attendance counts come from the membership store
	membershipStore := memberships.NewGormStore(r.db.GetPostgreSQL())
	eventService.SetMembershipCounter(membershipStore)

	// Redis-backed detail cache
	if r.db.GetRedisClient() != nil {
		eventService.SetCacheService(cache.NewService(r.db.GetRedisClient()))
	}

	r.eventService = eventService

	eventController := events.NewController(eventService)
	events.SetupEventRoutes(rg, eventController)
}

// setupInviteRoutes configures invite management routes
func (r *Router) setupInviteRoutes(rg *gin.RouterGroup) {
	inviteRepo := invites.NewRepository(r.db.GetPostgreSQL())
	inviteService := invites.NewService(inviteRepo, r.eventService)

	r.inviteService = inviteService

	inviteController := invites.NewController(inviteService)
	invites.SetupInviteRoutes(rg, inviteController)
}

// setupMembershipRoutes configures seat allocation and membership routes
func (r *Router) setupMembershipRoutes(rg *gin.RouterGroup) {
	store := memberships.NewGormStore(r.db.GetPostgreSQL())
	engine := memberships.NewEngine(store,
		memberships.WithThrottle(memberships.NewThrottle(r.config.Engine.ThrottleCooldown)),
	)

	membershipService := memberships.NewService(engine, store, r.eventService, r.inviteService)
	if r.notificationService != nil {
		membershipService.SetNotifier(r.notificationService)
	}

	membershipController := memberships.NewController(membershipService)
	memberships.SetupMembershipRoutes(rg, membershipController)
}
