package api

import (
	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/handlers"
	"github.com/talenthr/talenthr/internal/middleware"
	"github.com/talenthr/talenthr/internal/models"
)

func registerRecruitingRoutes(authed *gin.RouterGroup, recruiting *handlers.RecruitingHandler) {
	recruiters := middleware.RequireRole(models.RoleAdmin, models.RoleHRManager, models.RoleRecruiter)

	jobs := authed.Group("/jobs")
	jobs.Use(recruiters)
	{
		jobs.GET("", recruiting.ListJobs)
		jobs.POST("", recruiting.CreateJob)
		jobs.PATCH("/:id", recruiting.UpdateJob)
		jobs.POST("/:id/close", recruiting.CloseJob)
	}

	candidates := authed.Group("/candidates")
	candidates.Use(recruiters)
	{
		candidates.GET("", recruiting.ListCandidates)
		candidates.POST("", recruiting.CreateCandidate)
		candidates.PATCH("/:id", recruiting.UpdateCandidate)
		candidates.PUT("/:id/stage", recruiting.SetStage)
	}

	interviews := authed.Group("/interviews")
	interviews.Use(recruiters)
	{
		interviews.GET("", recruiting.ListInterviews)
		interviews.POST("", recruiting.ScheduleInterview)
		interviews.POST("/:id/complete", recruiting.CompleteInterview)
		interviews.POST("/:id/cancel", recruiting.CancelInterview)
	}
}
