package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/models"
	"github.com/talenthr/talenthr/internal/services"
	appErrors "github.com/talenthr/talenthr/pkg/errors"
	"github.com/talenthr/talenthr/pkg/response"
)

// UserHandler exposes employee directory management.
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler wires the user endpoints.
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List returns the users visible to the actor, filtered and paginated.
func (h *UserHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.users.List(requestContext(c), actor, services.ListUsersInput{
		Role:       models.Role(strings.TrimSpace(c.Query("role"))),
		Status:     models.UserStatus(strings.TrimSpace(c.Query("status"))),
		Department: c.Query("department"),
		Search:     c.Query("search"),
		Page:       parseIntQuery(c, "page", 1),
		PageSize:   parseIntQuery(c, "per_page", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, gin.H{"users": result.Users},
		pageMeta(result.Page, result.PageSize, result.Total))
}

// Get returns one user if the actor may see them.
func (h *UserHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.users.Get(requestContext(c), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

type createUserRequest struct {
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	FirstName  string  `json:"first_name" validate:"max=80"`
	LastName   string  `json:"last_name" validate:"max=80"`
	JobTitle   string  `json:"job_title" validate:"max=120"`
	Department string  `json:"department" validate:"max=120"`
	Role       string  `json:"role" validate:"required"`
	ManagerID  *string `json:"manager_id"`
}

// Create provisions a user directly, bypassing the invitation flow.
func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req createUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role := models.Role(req.Role)
	if !models.ValidRole(role) {
		response.Error(c, appErrors.NewBadRequest("unknown role"))
		return
	}

	user, err := h.users.Create(requestContext(c), actor, services.CreateUserInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		JobTitle:   req.JobTitle,
		Department: req.Department,
		Role:       role,
		ManagerID:  req.ManagerID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

type updateUserRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	JobTitle     *string `json:"job_title"`
	Department   *string `json:"department"`
	ManagerID    *string `json:"manager_id"`
	ClearManager bool    `json:"clear_manager"`
}

// Update edits a user's record.
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req updateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Update(requestContext(c), actor, c.Param("id"), services.UpdateUserInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		JobTitle:     req.JobTitle,
		Department:   req.Department,
		ManagerID:    req.ManagerID,
		ClearManager: req.ClearManager,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// SetRole changes a user's role.
func (h *UserHandler) SetRole(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req setRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.SetRole(requestContext(c), actor, c.Param("id"), models.Role(req.Role))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// Activate restores a deactivated account.
func (h *UserHandler) Activate(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.users.Activate(requestContext(c), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"active": true})
}

// Deactivate disables an account and revokes its sessions.
func (h *UserHandler) Deactivate(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.users.Deactivate(requestContext(c), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"active": false})
}
