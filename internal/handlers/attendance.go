package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/services"
	appErrors "github.com/talenthr/talenthr/pkg/errors"
	"github.com/talenthr/talenthr/pkg/response"
)

// AttendanceHandler covers clock in/out and attendance history.
type AttendanceHandler struct {
	attendance *services.AttendanceService
}

// NewAttendanceHandler wires the attendance endpoints.
func NewAttendanceHandler(attendance *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

type clockInRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

// ClockIn records the start of the actor's work day. A second call on the
// same day conflicts.
func (h *AttendanceHandler) ClockIn(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req clockInRequest
	if c.Request != nil && c.Request.ContentLength > 0 {
		if !bindAndValidate(c, &req) {
			return
		}
	}

	record, err := h.attendance.ClockIn(requestContext(c), actor, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"attendance": record})
}

// ClockOut closes the actor's open attendance row for today.
func (h *AttendanceHandler) ClockOut(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	record, err := h.attendance.ClockOut(requestContext(c), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attendance": record})
}

// Today returns the actor's attendance row for the current day, if any.
func (h *AttendanceHandler) Today(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	record, err := h.attendance.Today(requestContext(c), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attendance": record})
}

// List returns attendance history visible to the actor.
func (h *AttendanceHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.attendance.List(requestContext(c), actor, services.ListAttendanceInput{
		UserID:   c.Query("user_id"),
		From:     c.Query("from"),
		To:       c.Query("to"),
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "per_page", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, gin.H{"records": result.Records},
		pageMeta(result.Page, result.PageSize, result.Total))
}
