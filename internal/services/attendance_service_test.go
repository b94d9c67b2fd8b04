package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/models"
)

type fixedSettings struct {
	settings models.CompanySettings
}

func (f fixedSettings) Settings(ctx context.Context, companyID string) (models.CompanySettings, error) {
	return f.settings, nil
}

func newAttendanceService(t *testing.T, db *gorm.DB, clock func() time.Time) *AttendanceService {
	t.Helper()

	svc, err := NewAttendanceService(db,
		fixedSettings{settings: models.DefaultCompanySettings()},
		WithAttendanceClock(clock))
	require.NoError(t, err)
	return svc
}

func TestAttendanceClockInRejectsSecondSameDay(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	user := seedUser(t, db, company.ID, "worker@acme.test", models.RoleEmployee)

	current := time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC)
	svc := newAttendanceService(t, db, func() time.Time { return current })
	actor := actorFor(user)

	_, err := svc.ClockIn(context.Background(), actor, "")
	require.NoError(t, err)

	_, err = svc.ClockIn(context.Background(), actor, "")
	require.ErrorIs(t, err, ErrAlreadyClockedIn)
}

func TestAttendanceClockOutComputesRoundedMinutes(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	user := seedUser(t, db, company.ID, "worker@acme.test", models.RoleEmployee)

	current := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	svc := newAttendanceService(t, db, func() time.Time { return current })
	actor := actorFor(user)

	_, err := svc.ClockIn(context.Background(), actor, "")
	require.NoError(t, err)

	current = current.Add(8*time.Hour + 14*time.Minute + 40*time.Second)

	record, err := svc.ClockOut(context.Background(), actor)
	require.NoError(t, err)
	require.NotNil(t, record.ClockOut)
	require.Equal(t, 8*60+15, record.WorkMinutes)

	_, err = svc.ClockOut(context.Background(), actor)
	require.ErrorIs(t, err, ErrAlreadyClockedOut)
}

func TestAttendanceClockOutWithoutClockInFails(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	user := seedUser(t, db, company.ID, "worker@acme.test", models.RoleEmployee)

	svc := newAttendanceService(t, db, time.Now)

	_, err := svc.ClockOut(context.Background(), actorFor(user))
	require.ErrorIs(t, err, ErrNotClockedIn)
}

func TestAttendanceStatusDerivedFromWorkDayStart(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	onTime := seedUser(t, db, company.ID, "ontime@acme.test", models.RoleEmployee)
	late := seedUser(t, db, company.ID, "late@acme.test", models.RoleEmployee)

	// Inside the grace window after the 09:00 start.
	current := time.Date(2025, 6, 2, 9, 10, 0, 0, time.UTC)
	svc := newAttendanceService(t, db, func() time.Time { return current })

	record, err := svc.ClockIn(context.Background(), actorFor(onTime), "")
	require.NoError(t, err)
	require.Equal(t, models.AttendancePresent, record.Status)

	current = time.Date(2025, 6, 2, 9, 20, 0, 0, time.UTC)

	record, err = svc.ClockIn(context.Background(), actorFor(late), "")
	require.NoError(t, err)
	require.Equal(t, models.AttendanceLate, record.Status)
}

func TestAttendanceListScopedByRole(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	manager := seedUser(t, db, company.ID, "mgr@acme.test", models.RoleManager)
	report := seedUser(t, db, company.ID, "report@acme.test", models.RoleEmployee)
	require.NoError(t, db.Model(report).Update("manager_id", manager.ID).Error)
	outsider := seedUser(t, db, company.ID, "other@acme.test", models.RoleEmployee)

	current := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	svc := newAttendanceService(t, db, func() time.Time { return current })

	for _, u := range []*models.User{manager, report, outsider} {
		_, err := svc.ClockIn(context.Background(), actorFor(u), "")
		require.NoError(t, err)
	}

	// Manager sees their own row plus the direct report's, not the outsider's.
	result, err := svc.List(context.Background(), actorFor(manager), ListAttendanceInput{})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	// An employee sees only their own row.
	result, err = svc.List(context.Background(), actorFor(outsider), ListAttendanceInput{})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Equal(t, outsider.ID, result.Records[0].UserID)
}
