package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talenthr/talenthr/internal/models"
)

func TestAttendanceReportAggregates(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)
	worker := seedUser(t, db, company.ID, "emp@acme.test", models.RoleEmployee)

	rows := []models.Attendance{
		{CompanyID: company.ID, UserID: worker.ID, Date: "2025-06-02",
			ClockIn: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), Status: models.AttendancePresent, WorkMinutes: 480},
		{CompanyID: company.ID, UserID: worker.ID, Date: "2025-06-03",
			ClockIn: time.Date(2025, 6, 3, 9, 30, 0, 0, time.UTC), Status: models.AttendanceLate, WorkMinutes: 450},
		{CompanyID: company.ID, UserID: admin.ID, Date: "2025-06-02",
			ClockIn: time.Date(2025, 6, 2, 8, 55, 0, 0, time.UTC), Status: models.AttendancePresent, WorkMinutes: 500},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	svc, err := NewReportService(db)
	require.NoError(t, err)

	report, err := svc.Attendance(context.Background(), actorFor(admin), Period{From: "2025-06-01", To: "2025-06-30"})
	require.NoError(t, err)
	require.Len(t, report.Users, 2)
	require.EqualValues(t, 3, report.Overall.DaysPresent)
	require.EqualValues(t, 1, report.Overall.DaysLate)
	require.EqualValues(t, 1430, report.Overall.TotalMinutes)

	// The employee's own report covers only their rows.
	report, err = svc.Attendance(context.Background(), actorFor(worker), Period{From: "2025-06-01", To: "2025-06-30"})
	require.NoError(t, err)
	require.Len(t, report.Users, 1)
	require.EqualValues(t, 930, report.Overall.TotalMinutes)
}

func TestLeaveReportAggregatesByStatus(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)
	worker := seedUser(t, db, company.ID, "emp@acme.test", models.RoleEmployee)

	leaveType := &models.LeaveType{CompanyID: company.ID, Name: "Annual", Code: "AL", QuotaDays: 20, Status: "active"}
	require.NoError(t, db.Create(leaveType).Error)

	requests := []models.LeaveRequest{
		{CompanyID: company.ID, UserID: worker.ID, LeaveTypeID: leaveType.ID,
			StartDate: "2025-06-02", EndDate: "2025-06-03", Days: 2, Status: models.LeaveApproved},
		{CompanyID: company.ID, UserID: worker.ID, LeaveTypeID: leaveType.ID,
			StartDate: "2025-06-10", EndDate: "2025-06-10", Days: 1, Status: models.LeavePending},
		{CompanyID: company.ID, UserID: worker.ID, LeaveTypeID: leaveType.ID,
			StartDate: "2025-07-01", EndDate: "2025-07-02", Days: 2, Status: models.LeaveApproved},
	}
	for i := range requests {
		require.NoError(t, db.Create(&requests[i]).Error)
	}

	svc, err := NewReportService(db)
	require.NoError(t, err)

	// July's request falls outside the June period.
	report, err := svc.Leave(context.Background(), actorFor(admin), Period{From: "2025-06-01", To: "2025-06-30"})
	require.NoError(t, err)
	require.Len(t, report.Users, 1)
	require.Equal(t, 2.0, report.Overall.ApprovedDays)
	require.Equal(t, 1.0, report.Overall.PendingDays)
	require.Equal(t, 0.0, report.Overall.RejectedDays)
}

func TestReportRejectsInvalidPeriod(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)

	svc, err := NewReportService(db)
	require.NoError(t, err)

	_, err = svc.Attendance(context.Background(), actorFor(admin), Period{From: "2025-06-30", To: "2025-06-01"})
	require.Error(t, err)
}
