package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	iauth "github.com/talenthr/talenthr/internal/auth"
	"github.com/talenthr/talenthr/internal/services"
	appErrors "github.com/talenthr/talenthr/pkg/errors"
	"github.com/talenthr/talenthr/pkg/metrics"
	"github.com/talenthr/talenthr/pkg/response"
)

// AuthHandler owns the login, refresh, logout and registration endpoints.
// Tokens travel exclusively in HttpOnly cookies.
type AuthHandler struct {
	credentials *iauth.CredentialService
	sessions    *iauth.SessionService
	companies   *services.CompanyService
	users       *services.UserService
	cookies     iauth.CookieWriter
}

// NewAuthHandler wires the auth endpoints to their services.
func NewAuthHandler(
	credentials *iauth.CredentialService,
	sessions *iauth.SessionService,
	companies *services.CompanyService,
	users *services.UserService,
	cookies iauth.CookieWriter,
) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		sessions:    sessions,
		companies:   companies,
		users:       users,
		cookies:     cookies,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and sets the cookie pair. Unknown emails and
// wrong passwords produce the same response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.credentials.Verify(iauth.VerifyInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		switch {
		case errors.Is(err, iauth.ErrAccountLocked):
			response.Error(c, appErrors.New("ACCOUNT_LOCKED", "Account temporarily locked, try again later", http.StatusUnauthorized))
		case errors.Is(err, iauth.ErrAccountDisabled), errors.Is(err, iauth.ErrInvalidCredentials):
			response.Error(c, appErrors.ErrInvalidCredentials)
		default:
			response.Error(c, err)
		}
		return
	}

	pair, _, err := h.sessions.CreateSession(user, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	h.cookies.Write(c, pair)
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// Refresh rotates the session using the refresh cookie. Any failure clears
// both cookies so the browser falls back to the login screen.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(iauth.RefreshTokenCookie)
	if err != nil || token == "" {
		h.cookies.Clear(c)
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pair, _, err := h.sessions.RefreshSession(token)
	if err != nil {
		h.cookies.Clear(c)
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	h.cookies.Write(c, pair)
	response.Success(c, http.StatusOK, gin.H{"refreshed": true})
}

// Logout revokes the current session and clears both cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	if claims, ok := currentClaims(c); ok && claims.SessionID != "" {
		_ = h.sessions.RevokeSession(claims.SessionID)
	}

	h.cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// Me returns the authenticated user's record.
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.users.Get(requestContext(c), actor, actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

type registerRequest struct {
	CompanyName string `json:"company_name" validate:"required,min=2,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FirstName   string `json:"first_name" validate:"max=80"`
	LastName    string `json:"last_name" validate:"max=80"`
}

// Register bootstraps a company together with its first admin and signs the
// admin in immediately.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	company, admin, err := h.companies.Register(requestContext(c), services.RegisterCompanyInput{
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	pair, _, err := h.sessions.CreateSession(admin, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// Registration signs the admin in without passing through Verify, so the
	// login stamp is recorded here.
	_ = h.users.RecordLogin(requestContext(c), admin.ID, c.ClientIP(), time.Now())

	h.cookies.Write(c, pair)
	response.Success(c, http.StatusCreated, gin.H{"company": company, "user": admin})
}
