package memberships

import (
	"gameon/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupMembershipRoutes(router *gin.RouterGroup, controller Controller) {
	events := router.Group("/events/:eventId")
	events.Use(middleware.JWTAuth())
	{
		events.GET("/membership", controller.GetMembership)
		events.POST("/claim", controller.ClaimSeat)
		events.POST("/leave", controller.LeaveSeat)
		events.POST("/waitlist/leave", controller.LeaveWaitlist)
		events.POST("/request", controller.RequestToJoin)
		events.POST("/requests/:userId/accept", controller.AcceptRequest)
	}

	me := router.Group("/users/me")
	me.Use(middleware.JWTAuth())
	{
		me.GET("/memberships", controller.ListMyMemberships)
	}
}
