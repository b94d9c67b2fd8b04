package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/services"
	appErrors "github.com/talenthr/talenthr/pkg/errors"
	"github.com/talenthr/talenthr/pkg/response"
)

// ReportHandler exposes period rollups over attendance and leave.
type ReportHandler struct {
	reports *services.ReportService
}

// NewReportHandler wires the report endpoints.
func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func periodFromQuery(c *gin.Context) services.Period {
	return services.Period{
		From: c.Query("from"),
		To:   c.Query("to"),
	}
}

// Attendance returns the attendance rollup for a period.
func (h *ReportHandler) Attendance(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	report, err := h.reports.Attendance(requestContext(c), actor, periodFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// Leave returns the leave rollup for a period.
func (h *ReportHandler) Leave(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	report, err := h.reports.Leave(requestContext(c), actor, periodFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}
