package api

import (
	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/handlers"
	"github.com/talenthr/talenthr/internal/middleware"
	"github.com/talenthr/talenthr/internal/models"
)

func registerUserRoutes(authed *gin.RouterGroup, users *handlers.UserHandler, profile *handlers.ProfileHandler) {
	manage := middleware.RequireRole(models.RoleAdmin, models.RoleHRManager)

	group := authed.Group("/users")
	{
		group.GET("", users.List)
		group.GET("/:id", users.Get)
		group.POST("", manage, users.Create)
		group.PATCH("/:id", manage, users.Update)
		group.PUT("/:id/role", middleware.RequireRole(models.RoleAdmin), users.SetRole)
		group.POST("/:id/activate", manage, users.Activate)
		group.POST("/:id/deactivate", manage, users.Deactivate)
		// Accounts are deactivated, never destroyed; history keeps its references.
		group.DELETE("/:id", manage, users.Deactivate)
	}

	authed.GET("/profile", profile.Get)
	authed.PATCH("/profile", profile.Update)
	authed.POST("/profile/password", profile.ChangePassword)
}
