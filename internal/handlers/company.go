package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/models"
	"github.com/talenthr/talenthr/internal/services"
	appErrors "github.com/talenthr/talenthr/pkg/errors"
	"github.com/talenthr/talenthr/pkg/response"
)

// CompanyHandler exposes tenant profile and settings management.
type CompanyHandler struct {
	companies *services.CompanyService
}

// NewCompanyHandler wires the company endpoints.
func NewCompanyHandler(companies *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

// Get returns the actor's company.
func (h *CompanyHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	company, err := h.companies.Get(requestContext(c), actor.CompanyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"company": company})
}

type updateCompanyRequest struct {
	Name *string `json:"name"`
}

// Update renames the company.
func (h *CompanyHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req updateCompanyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	company, err := h.companies.Update(requestContext(c), actor.CompanyID, services.UpdateCompanyInput{
		Name: req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"company": company})
}

// Settings returns the decoded workplace settings.
func (h *CompanyHandler) Settings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	settings, err := h.companies.Settings(requestContext(c), actor.CompanyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}

type updateSettingsRequest struct {
	Timezone     string `json:"timezone"`
	WorkDayStart string `json:"work_day_start"`
	WorkDayEnd   string `json:"work_day_end"`
	WeekStart    string `json:"week_start"`
}

// UpdateSettings merges the supplied settings fields over the stored ones.
func (h *CompanyHandler) UpdateSettings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req updateSettingsRequest
	if !bindAndValidate(c, &req) {
		return
	}

	settings, err := h.companies.UpdateSettings(requestContext(c), actor.CompanyID, models.CompanySettings{
		Timezone:     req.Timezone,
		WorkDayStart: req.WorkDayStart,
		WorkDayEnd:   req.WorkDayEnd,
		WeekStart:    req.WeekStart,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}
