package api

import (
	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/handlers"
	"github.com/talenthr/talenthr/internal/middleware"
	"github.com/talenthr/talenthr/internal/models"
)

func registerLeaveRoutes(authed *gin.RouterGroup, leave *handlers.LeaveHandler) {
	manageTypes := middleware.RequireRole(models.RoleAdmin, models.RoleHRManager)
	review := middleware.RequireRole(models.RoleAdmin, models.RoleHRManager, models.RoleManager)

	types := authed.Group("/leave-types")
	{
		types.GET("", leave.ListTypes)
		types.POST("", manageTypes, leave.CreateType)
		types.PATCH("/:id", manageTypes, leave.UpdateType)
		types.DELETE("/:id", manageTypes, leave.DeleteType)
	}

	requests := authed.Group("/leaves")
	{
		requests.GET("", leave.ListRequests)
		requests.POST("", leave.CreateRequest)
		requests.POST("/:id/approve", review, leave.Approve)
		requests.POST("/:id/reject", review, leave.Reject)
		requests.POST("/:id/cancel", leave.Cancel)
	}

	authed.GET("/leaves/balances", leave.Balances)
}
