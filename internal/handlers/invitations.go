package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/models"
	"github.com/talenthr/talenthr/internal/services"
	appErrors "github.com/talenthr/talenthr/pkg/errors"
	"github.com/talenthr/talenthr/pkg/response"
)

// InvitationHandler exposes the invitation lifecycle plus the public
// validate/accept endpoints used by the signup page.
type InvitationHandler struct {
	invitations *services.InvitationService
}

// NewInvitationHandler wires the invitation endpoints.
func NewInvitationHandler(invitations *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

type createInvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

// Create issues an invitation for the actor's company.
func (h *InvitationHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req createInvitationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role := models.Role(req.Role)
	if !models.ValidRole(role) {
		response.Error(c, appErrors.NewBadRequest("unknown role"))
		return
	}

	invitation, _, err := h.invitations.Create(requestContext(c), services.CreateInvitationInput{
		CompanyID: actor.CompanyID,
		Email:     req.Email,
		Role:      role,
		InvitedBy: actor.UserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"invitation": invitation})
}

// List returns the company's invitations, newest first.
func (h *InvitationHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	invitations, err := h.invitations.List(requestContext(c), actor.CompanyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"invitations": invitations})
}

// Cancel voids a pending invitation.
func (h *InvitationHandler) Cancel(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.invitations.Cancel(requestContext(c), actor.CompanyID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}

// Resend rotates the token and re-sends the invitation email.
func (h *InvitationHandler) Resend(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	invitation, _, err := h.invitations.Resend(requestContext(c), actor.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"invitation": invitation})
}

// Validate is the public token check used by the signup page before showing
// the registration form.
func (h *InvitationHandler) Validate(c *gin.Context) {
	invitation, err := h.invitations.Validate(requestContext(c), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"email":      invitation.Email,
		"role":       invitation.Role,
		"company_id": invitation.CompanyID,
		"expires_at": invitation.ExpiresAt,
	})
}

type acceptInvitationRequest struct {
	Token     string `json:"token" validate:"required"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"max=80"`
	LastName  string `json:"last_name" validate:"max=80"`
}

// Accept is the public endpoint that turns a valid invitation into a user
// account.
func (h *InvitationHandler) Accept(c *gin.Context) {
	var req acceptInvitationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.invitations.Accept(requestContext(c), services.AcceptInvitationInput{
		Token:     req.Token,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": user})
}
