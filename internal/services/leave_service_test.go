package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/models"
)

func newLeaveService(t *testing.T, db *gorm.DB) *LeaveService {
	t.Helper()

	svc, err := NewLeaveService(db)
	require.NoError(t, err)
	return svc
}

func seedLeaveType(t *testing.T, svc *LeaveService, admin Actor, quota float64) *models.LeaveType {
	t.Helper()

	leaveType, err := svc.CreateType(context.Background(), admin, CreateLeaveTypeInput{
		Name:             "Annual Leave",
		Code:             "AL",
		QuotaDays:        quota,
		RequiresApproval: true,
	})
	require.NoError(t, err)
	return leaveType
}

func TestBusinessDaysSkipsWeekends(t *testing.T) {
	// Monday 2025-06-02 through Sunday 2025-06-08 spans five working days.
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 5.0, BusinessDays(start, end))

	// A single Saturday counts zero.
	saturday := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 0.0, BusinessDays(saturday, saturday))
}

func TestLeaveRequestBooksPendingDays(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)
	employee := seedUser(t, db, company.ID, "emp@acme.test", models.RoleEmployee)

	svc := newLeaveService(t, db)
	leaveType := seedLeaveType(t, svc, actorFor(admin), 20)

	request, err := svc.CreateRequest(context.Background(), actorFor(employee), CreateLeaveRequestInput{
		LeaveTypeID: leaveType.ID,
		StartDate:   "2025-06-02",
		EndDate:     "2025-06-06",
		Reason:      "vacation",
	})
	require.NoError(t, err)
	require.Equal(t, 5.0, request.Days)
	require.Equal(t, models.LeavePending, request.Status)

	balances, err := svc.Balances(context.Background(), actorFor(employee), "", 2025)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	require.Equal(t, 5.0, balances[0].Pending)
	require.Equal(t, 15.0, balances[0].Available())
}

func TestLeaveApprovalMovesPendingToUsed(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)
	employee := seedUser(t, db, company.ID, "emp@acme.test", models.RoleEmployee)

	svc := newLeaveService(t, db)
	leaveType := seedLeaveType(t, svc, actorFor(admin), 20)

	request, err := svc.CreateRequest(context.Background(), actorFor(employee), CreateLeaveRequestInput{
		LeaveTypeID: leaveType.ID,
		StartDate:   "2025-06-02",
		EndDate:     "2025-06-03",
	})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), actorFor(admin), request.ID, "enjoy")
	require.NoError(t, err)
	require.Equal(t, models.LeaveApproved, approved.Status)

	balances, err := svc.Balances(context.Background(), actorFor(employee), "", 2025)
	require.NoError(t, err)
	require.Equal(t, 2.0, balances[0].Used)
	require.Equal(t, 0.0, balances[0].Pending)
	require.Equal(t, 18.0, balances[0].Available())

	// Settled requests cannot be reviewed again.
	_, err = svc.Reject(context.Background(), actorFor(admin), request.ID, "")
	require.ErrorIs(t, err, ErrLeaveRequestNotPending)
}

func TestLeaveRejectionReleasesPendingDays(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)
	employee := seedUser(t, db, company.ID, "emp@acme.test", models.RoleEmployee)

	svc := newLeaveService(t, db)
	leaveType := seedLeaveType(t, svc, actorFor(admin), 20)

	request, err := svc.CreateRequest(context.Background(), actorFor(employee), CreateLeaveRequestInput{
		LeaveTypeID: leaveType.ID,
		StartDate:   "2025-06-02",
		EndDate:     "2025-06-03",
	})
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), actorFor(admin), request.ID, "busy period")
	require.NoError(t, err)

	balances, err := svc.Balances(context.Background(), actorFor(employee), "", 2025)
	require.NoError(t, err)
	require.Equal(t, 0.0, balances[0].Used)
	require.Equal(t, 0.0, balances[0].Pending)
	require.Equal(t, 20.0, balances[0].Available())
}

func TestLeaveRequestRejectsInsufficientBalance(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)
	employee := seedUser(t, db, company.ID, "emp@acme.test", models.RoleEmployee)

	svc := newLeaveService(t, db)
	leaveType := seedLeaveType(t, svc, actorFor(admin), 2)

	_, err := svc.CreateRequest(context.Background(), actorFor(employee), CreateLeaveRequestInput{
		LeaveTypeID: leaveType.ID,
		StartDate:   "2025-06-02",
		EndDate:     "2025-06-06",
	})
	require.ErrorIs(t, err, ErrLeaveBalanceExceeded)
}

func TestLeaveCancelReleasesPendingDays(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)
	employee := seedUser(t, db, company.ID, "emp@acme.test", models.RoleEmployee)

	svc := newLeaveService(t, db)
	leaveType := seedLeaveType(t, svc, actorFor(admin), 20)

	request, err := svc.CreateRequest(context.Background(), actorFor(employee), CreateLeaveRequestInput{
		LeaveTypeID: leaveType.ID,
		StartDate:   "2025-06-02",
		EndDate:     "2025-06-03",
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), actorFor(employee), request.ID)
	require.NoError(t, err)
	require.Equal(t, models.LeaveCancelled, cancelled.Status)

	balances, err := svc.Balances(context.Background(), actorFor(employee), "", 2025)
	require.NoError(t, err)
	require.Equal(t, 0.0, balances[0].Pending)
}

func TestLeaveReviewRejectsOwnRequest(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)

	svc := newLeaveService(t, db)
	leaveType := seedLeaveType(t, svc, actorFor(admin), 20)

	request, err := svc.CreateRequest(context.Background(), actorFor(admin), CreateLeaveRequestInput{
		LeaveTypeID: leaveType.ID,
		StartDate:   "2025-06-02",
		EndDate:     "2025-06-03",
	})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), actorFor(admin), request.ID, "")
	require.Error(t, err)
}
