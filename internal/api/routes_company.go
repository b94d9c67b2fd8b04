package api

import (
	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/handlers"
	"github.com/talenthr/talenthr/internal/middleware"
	"github.com/talenthr/talenthr/internal/models"
)

func registerCompanyRoutes(authed *gin.RouterGroup, company *handlers.CompanyHandler) {
	group := authed.Group("/company")
	{
		group.GET("", company.Get)
		group.GET("/settings", company.Settings)
		group.PATCH("", middleware.RequireRole(models.RoleAdmin), company.Update)
		group.PATCH("/settings", middleware.RequireRole(models.RoleAdmin, models.RoleHRManager), company.UpdateSettings)
	}
}
