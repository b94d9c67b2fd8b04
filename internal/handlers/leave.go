package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/models"
	"github.com/talenthr/talenthr/internal/services"
	appErrors "github.com/talenthr/talenthr/pkg/errors"
	"github.com/talenthr/talenthr/pkg/response"
)

// LeaveHandler covers leave types, requests, approvals and balances.
type LeaveHandler struct {
	leave *services.LeaveService
}

// NewLeaveHandler wires the leave endpoints.
func NewLeaveHandler(leave *services.LeaveService) *LeaveHandler {
	return &LeaveHandler{leave: leave}
}

type createLeaveTypeRequest struct {
	Name             string  `json:"name" validate:"required,max=120"`
	Code             string  `json:"code" validate:"required,max=20"`
	QuotaDays        float64 `json:"quota_days" validate:"gte=0"`
	CarryForward     bool    `json:"carry_forward"`
	MaxCarryDays     float64 `json:"max_carry_days" validate:"gte=0"`
	RequiresApproval *bool   `json:"requires_approval"`
}

// CreateType adds a leave category.
func (h *LeaveHandler) CreateType(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req createLeaveTypeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	requiresApproval := true
	if req.RequiresApproval != nil {
		requiresApproval = *req.RequiresApproval
	}

	leaveType, err := h.leave.CreateType(requestContext(c), actor, services.CreateLeaveTypeInput{
		Name:             req.Name,
		Code:             req.Code,
		QuotaDays:        req.QuotaDays,
		CarryForward:     req.CarryForward,
		MaxCarryDays:     req.MaxCarryDays,
		RequiresApproval: requiresApproval,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"leave_type": leaveType})
}

// ListTypes returns the company's leave categories.
func (h *LeaveHandler) ListTypes(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	types, err := h.leave.ListTypes(requestContext(c), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"leave_types": types})
}

type updateLeaveTypeRequest struct {
	Name             *string  `json:"name"`
	QuotaDays        *float64 `json:"quota_days"`
	CarryForward     *bool    `json:"carry_forward"`
	MaxCarryDays     *float64 `json:"max_carry_days"`
	RequiresApproval *bool    `json:"requires_approval"`
	Status           *string  `json:"status"`
}

// UpdateType edits a leave category.
func (h *LeaveHandler) UpdateType(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req updateLeaveTypeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	leaveType, err := h.leave.UpdateType(requestContext(c), actor, c.Param("id"), services.UpdateLeaveTypeInput{
		Name:             req.Name,
		QuotaDays:        req.QuotaDays,
		CarryForward:     req.CarryForward,
		MaxCarryDays:     req.MaxCarryDays,
		RequiresApproval: req.RequiresApproval,
		Status:           req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"leave_type": leaveType})
}

// DeleteType archives a leave category so history stays intact.
func (h *LeaveHandler) DeleteType(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.leave.DeleteType(requestContext(c), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"archived": true})
}

type createLeaveRequestRequest struct {
	LeaveTypeID string `json:"leave_type_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required"`
	EndDate     string `json:"end_date" validate:"required"`
	Reason      string `json:"reason" validate:"max=500"`
}

// CreateRequest books leave days against the actor's balance.
func (h *LeaveHandler) CreateRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req createLeaveRequestRequest
	if !bindAndValidate(c, &req) {
		return
	}

	request, err := h.leave.CreateRequest(requestContext(c), actor, services.CreateLeaveRequestInput{
		LeaveTypeID: req.LeaveTypeID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Reason:      req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"request": request})
}

// ListRequests returns the leave requests visible to the actor.
func (h *LeaveHandler) ListRequests(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.leave.ListRequests(requestContext(c), actor, services.ListLeaveInput{
		Status:   models.LeaveRequestStatus(strings.TrimSpace(c.Query("status"))),
		UserID:   c.Query("user_id"),
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "per_page", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, gin.H{"requests": result.Requests},
		pageMeta(result.Page, result.PageSize, result.Total))
}

type reviewLeaveRequest struct {
	Note string `json:"note" validate:"max=500"`
}

// Approve settles a pending request as approved.
func (h *LeaveHandler) Approve(c *gin.Context) {
	h.review(c, true)
}

// Reject settles a pending request as rejected and releases the booked days.
func (h *LeaveHandler) Reject(c *gin.Context) {
	h.review(c, false)
}

func (h *LeaveHandler) review(c *gin.Context, approve bool) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req reviewLeaveRequest
	if c.Request != nil && c.Request.ContentLength > 0 {
		if !bindAndValidate(c, &req) {
			return
		}
	}

	var (
		request *models.LeaveRequest
		err     error
	)
	if approve {
		request, err = h.leave.Approve(requestContext(c), actor, c.Param("id"), req.Note)
	} else {
		request, err = h.leave.Reject(requestContext(c), actor, c.Param("id"), req.Note)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": request})
}

// Cancel withdraws the actor's own pending request.
func (h *LeaveHandler) Cancel(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	request, err := h.leave.Cancel(requestContext(c), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": request})
}

// Balances returns per-type balances for a user and year.
func (h *LeaveHandler) Balances(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	year := 0
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.NewBadRequest("year must be a number"))
			return
		}
		year = parsed
	}

	balances, err := h.leave.Balances(requestContext(c), actor, c.Query("user_id"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"balances": balances})
}
