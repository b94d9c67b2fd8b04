package api

import (
	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/handlers"
	"github.com/talenthr/talenthr/internal/middleware"
	"github.com/talenthr/talenthr/internal/models"
)

func registerPerformanceRoutes(authed *gin.RouterGroup, performance *handlers.PerformanceHandler) {
	reviewers := middleware.RequireRole(models.RoleAdmin, models.RoleHRManager, models.RoleManager)

	goals := authed.Group("/goals")
	{
		goals.GET("", performance.ListGoals)
		goals.POST("", performance.CreateGoal)
		goals.PATCH("/:id", performance.UpdateGoal)
		goals.DELETE("/:id", performance.DeleteGoal)
	}

	reviews := authed.Group("/reviews")
	{
		reviews.GET("", performance.ListReviews)
		reviews.POST("", reviewers, performance.CreateReview)
		reviews.PATCH("/:id", reviewers, performance.UpdateReview)
		reviews.POST("/:id/submit", reviewers, performance.SubmitReview)
		reviews.POST("/:id/acknowledge", performance.AcknowledgeReview)
	}
}
