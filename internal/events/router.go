package events

import (
	"gameon/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - anyone can browse events
	public := router.Group("/events")
	{
		public.GET("/upcoming", controller.GetUpcomingEvents) // GET /api/v1/events/upcoming
		public.GET("/:eventId", controller.GetEvent)          // GET /api/v1/events/:eventId
	}

	// Authenticated routes - hosting and cancellation
	authed := router.Group("/events")
	authed.Use(middleware.JWTAuth())
	{
		authed.POST("", controller.CreateEvent)                 // POST /api/v1/events
		authed.POST("/:eventId/cancel", controller.CancelEvent) // POST /api/v1/events/:eventId/cancel
	}
}
