package api

import (
	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/handlers"
)

func registerAttendanceRoutes(authed *gin.RouterGroup, attendance *handlers.AttendanceHandler) {
	group := authed.Group("/attendance")
	{
		group.POST("/clock-in", attendance.ClockIn)
		group.POST("/clock-out", attendance.ClockOut)
		group.GET("/today", attendance.Today)
		group.GET("", attendance.List)
	}
}
