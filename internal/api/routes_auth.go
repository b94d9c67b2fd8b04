package api

import (
	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/handlers"
	"github.com/talenthr/talenthr/internal/middleware"
	"github.com/talenthr/talenthr/internal/models"
)

type authRouteDeps struct {
	Auth        *handlers.AuthHandler
	Password    *handlers.PasswordHandler
	OTP         *handlers.OTPHandler
	Invitations *handlers.InvitationHandler
}

func registerAuthRoutes(engine *gin.Engine, authed *gin.RouterGroup, deps authRouteDeps) {
	auth := engine.Group("/api/auth")
	{
		auth.POST("/register", deps.Auth.Register)
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/refresh", deps.Auth.Refresh)
		auth.POST("/password/forgot", deps.Password.Forgot)
		auth.POST("/password/reset", deps.Password.Reset)
	}

	otp := engine.Group("/api/otp")
	{
		otp.POST("/request", deps.OTP.Request)
		otp.POST("/verify", deps.OTP.Verify)
	}

	// Public invitation endpoints used by the signup page.
	engine.GET("/api/invitations/validate", deps.Invitations.Validate)
	engine.POST("/api/invitations/accept", deps.Invitations.Accept)

	authed.GET("/auth/me", deps.Auth.Me)
	authed.POST("/auth/logout", deps.Auth.Logout)

	invitations := authed.Group("/invitations")
	invitations.Use(middleware.RequireRole(models.RoleAdmin, models.RoleHRManager))
	{
		invitations.GET("", deps.Invitations.List)
		invitations.POST("", deps.Invitations.Create)
		invitations.POST("/:id/resend", deps.Invitations.Resend)
		invitations.DELETE("/:id", deps.Invitations.Cancel)
	}
}
