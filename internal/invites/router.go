package invites

import (
	"gameon/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupInviteRoutes(router *gin.RouterGroup, controller Controller) {
	group := router.Group("/events/:eventId/invites")
	group.Use(middleware.JWTAuth())
	{
		group.POST("", controller.InviteUser)
		group.GET("", controller.ListInvites)
	}
}
