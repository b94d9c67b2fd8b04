package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/app"
	iauth "github.com/talenthr/talenthr/internal/auth"
	"github.com/talenthr/talenthr/internal/handlers"
	"github.com/talenthr/talenthr/internal/middleware"
	"github.com/talenthr/talenthr/internal/services"
	"github.com/talenthr/talenthr/pkg/mail"
)

// Deps carries everything the router needs that is built during server
// bootstrap rather than inside this package.
type Deps struct {
	DB          *gorm.DB
	JWT         *iauth.JWTService
	Sessions    *iauth.SessionService
	Credentials *iauth.CredentialService
	Mailer      mail.Mailer
	RateStore   middleware.RateStore
	Config      *app.Config
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if deps.Credentials == nil {
		return nil, fmt.Errorf("credential service must be provided")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	cfg := deps.Config

	companies, err := services.NewCompanyService(deps.DB)
	if err != nil {
		return nil, err
	}
	users, err := services.NewUserService(deps.DB, deps.Sessions)
	if err != nil {
		return nil, err
	}
	invitations, err := services.NewInvitationService(deps.DB, deps.Mailer,
		services.WithInvitationBaseURL(cfg.Invitations.BaseURL),
		services.WithInvitationExpiry(cfg.Invitations.TTL),
	)
	if err != nil {
		return nil, err
	}
	otps, err := services.NewOTPService(deps.DB, deps.Mailer)
	if err != nil {
		return nil, err
	}
	attendance, err := services.NewAttendanceService(deps.DB, companies)
	if err != nil {
		return nil, err
	}
	leave, err := services.NewLeaveService(deps.DB)
	if err != nil {
		return nil, err
	}
	performance, err := services.NewPerformanceService(deps.DB)
	if err != nil {
		return nil, err
	}
	recruiting, err := services.NewRecruitingService(deps.DB)
	if err != nil {
		return nil, err
	}
	reports, err := services.NewReportService(deps.DB)
	if err != nil {
		return nil, err
	}

	cookies := iauth.CookieWriter{
		Secure:     cfg.Server.CookieSecure,
		AccessTTL:  deps.JWT.AccessTokenTTL(),
		RefreshTTL: deps.Sessions.RefreshTokenTTL(),
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if cfg.Server.CSRF.Enabled {
		r.Use(middleware.CSRF())
	}
	// Basic rate limiting: 100 requests/minute per IP+path
	if deps.RateStore != nil {
		r.Use(middleware.RateLimitWithStore(deps.RateStore, 100, time.Minute))
	} else {
		r.Use(middleware.RateLimit(100, time.Minute))
	}

	r.GET("/health", handlers.Health())

	requireAuth := middleware.Auth(deps.JWT)
	authed := r.Group("/api")
	authed.Use(requireAuth)

	registerAuthRoutes(r, authed, authRouteDeps{
		Auth:        handlers.NewAuthHandler(deps.Credentials, deps.Sessions, companies, users, cookies),
		Password:    handlers.NewPasswordHandler(otps, users),
		OTP:         handlers.NewOTPHandler(otps),
		Invitations: handlers.NewInvitationHandler(invitations),
	})
	registerUserRoutes(authed, handlers.NewUserHandler(users), handlers.NewProfileHandler(users))
	registerCompanyRoutes(authed, handlers.NewCompanyHandler(companies))
	registerAttendanceRoutes(authed, handlers.NewAttendanceHandler(attendance))
	registerLeaveRoutes(authed, handlers.NewLeaveHandler(leave))
	registerPerformanceRoutes(authed, handlers.NewPerformanceHandler(performance))
	registerRecruitingRoutes(authed, handlers.NewRecruitingHandler(recruiting))
	registerReportRoutes(authed, handlers.NewReportHandler(reports))

	if cfg.Monitoring.Prometheus.Enabled {
		r.GET(cfg.Monitoring.Prometheus.Endpoint, gin.WrapH(promhttp.Handler()))
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
