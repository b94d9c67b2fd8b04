package api

import (
	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/handlers"
)

func registerReportRoutes(authed *gin.RouterGroup, reports *handlers.ReportHandler) {
	group := authed.Group("/reports")
	{
		group.GET("/attendance", reports.Attendance)
		group.GET("/leave", reports.Leave)
	}
}
