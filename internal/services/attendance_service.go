package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/models"
	apperrors "github.com/talenthr/talenthr/pkg/errors"
	"github.com/talenthr/talenthr/pkg/metrics"
)

const (
	attendanceDateLayout = "2006-01-02"
	clockTimeLayout      = "15:04"
	lateGrace            = 15 * time.Minute
)

var (
	// ErrAlreadyClockedIn rejects a second clock-in for the same day.
	ErrAlreadyClockedIn = apperrors.New("ALREADY_CLOCKED_IN", "Already clocked in today", http.StatusConflict)
	// ErrNotClockedIn rejects a clock-out without an open clock-in.
	ErrNotClockedIn = apperrors.New("NOT_CLOCKED_IN", "No open clock-in for today", http.StatusBadRequest)
	// ErrAlreadyClockedOut rejects a repeated clock-out.
	ErrAlreadyClockedOut = apperrors.New("ALREADY_CLOCKED_OUT", "Already clocked out today", http.StatusBadRequest)
	// ErrAttendanceNotFound indicates no attendance row within scope.
	ErrAttendanceNotFound = apperrors.New("ATTENDANCE_NOT_FOUND", "Attendance record not found", http.StatusNotFound)
)

// CompanySettingsReader resolves the tenant settings attendance derives
// late/present status from.
type CompanySettingsReader interface {
	Settings(ctx context.Context, companyID string) (models.CompanySettings, error)
}

// AttendanceOption customises AttendanceService behaviour.
type AttendanceOption func(*AttendanceService)

// WithAttendanceClock injects a custom clock primarily for testing.
func WithAttendanceClock(clock func() time.Time) AttendanceOption {
	return func(s *AttendanceService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// AttendanceService records one clock-in/clock-out pair per user per day.
type AttendanceService struct {
	db       *gorm.DB
	settings CompanySettingsReader
	now      func() time.Time
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(db *gorm.DB, settings CompanySettingsReader, opts ...AttendanceOption) (*AttendanceService, error) {
	if db == nil {
		return nil, errors.New("attendance service: db is required")
	}

	service := &AttendanceService{
		db:       db,
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// ClockIn opens today's attendance row. The (user_id, date) unique index
// rejects concurrent duplicates the pre-check cannot see.
func (s *AttendanceService) ClockIn(ctx context.Context, actor Actor, notes string) (*models.Attendance, error) {
	ctx = ensureContext(ctx)

	now, loc := s.companyNow(ctx, actor.CompanyID)
	date := now.In(loc).Format(attendanceDateLayout)

	var existing int64
	if err := s.db.WithContext(ctx).
		Model(&models.Attendance{}).
		Where("user_id = ? AND date = ?", actor.UserID, date).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("attendance service: check existing: %w", err)
	}
	if existing > 0 {
		return nil, ErrAlreadyClockedIn
	}

	attendance := &models.Attendance{
		CompanyID: actor.CompanyID,
		UserID:    actor.UserID,
		Date:      date,
		ClockIn:   now,
		Status:    s.statusFor(ctx, actor.CompanyID, now.In(loc)),
		Notes:     trimmed(notes),
	}

	if err := s.db.WithContext(ctx).Create(attendance).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrAlreadyClockedIn
		}
		return nil, fmt.Errorf("attendance service: clock in: %w", err)
	}

	metrics.ClockEvents.WithLabelValues("in").Inc()
	return attendance, nil
}

// ClockOut closes today's open attendance row and records the rounded minutes
// worked.
func (s *AttendanceService) ClockOut(ctx context.Context, actor Actor) (*models.Attendance, error) {
	ctx = ensureContext(ctx)

	now, loc := s.companyNow(ctx, actor.CompanyID)
	date := now.In(loc).Format(attendanceDateLayout)

	var attendance models.Attendance
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", actor.UserID, date).
		First(&attendance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotClockedIn
	}
	if err != nil {
		return nil, fmt.Errorf("attendance service: find today: %w", err)
	}
	if attendance.ClockOut != nil {
		return nil, ErrAlreadyClockedOut
	}

	minutes := int(now.Sub(attendance.ClockIn).Round(time.Minute).Minutes())
	if minutes < 0 {
		minutes = 0
	}

	updates := map[string]any{
		"clock_out":    now,
		"work_minutes": minutes,
	}
	if err := s.db.WithContext(ctx).Model(&attendance).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("attendance service: clock out: %w", err)
	}

	attendance.ClockOut = &now
	attendance.WorkMinutes = minutes

	metrics.ClockEvents.WithLabelValues("out").Inc()
	return &attendance, nil
}

// Today returns the actor's attendance row for the current day, if any.
func (s *AttendanceService) Today(ctx context.Context, actor Actor) (*models.Attendance, error) {
	ctx = ensureContext(ctx)

	now, loc := s.companyNow(ctx, actor.CompanyID)
	date := now.In(loc).Format(attendanceDateLayout)

	var attendance models.Attendance
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", actor.UserID, date).
		First(&attendance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAttendanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("attendance service: today: %w", err)
	}
	return &attendance, nil
}

// ListAttendanceInput filters attendance listings by user and date range.
type ListAttendanceInput struct {
	UserID   string
	From     string
	To       string
	Page     int
	PageSize int
}

// ListAttendanceResult carries one page of rows plus the unpaginated total.
type ListAttendanceResult struct {
	Records  []models.Attendance
	Total    int64
	Page     int
	PageSize int
}

// List returns attendance rows visible to the actor, newest day first.
func (s *AttendanceService) List(ctx context.Context, actor Actor, input ListAttendanceInput) (*ListAttendanceResult, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Attendance{})
	query = scopeByRole(s.db, query, actor, "user_id")

	if id := trimmed(input.UserID); id != "" {
		query = query.Where("user_id = ?", id)
	}
	if from := trimmed(input.From); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := trimmed(input.To); to != "" {
		query = query.Where("date <= ?", to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("attendance service: count: %w", err)
	}

	page, pageSize := normalisePage(input.Page, input.PageSize)

	var records []models.Attendance
	if err := query.
		Order("date DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("attendance service: list: %w", err)
	}

	return &ListAttendanceResult{Records: records, Total: total, Page: page, PageSize: pageSize}, nil
}

// companyNow returns the current instant plus the tenant's location for
// day-boundary math. Unknown timezones fall back to UTC.
func (s *AttendanceService) companyNow(ctx context.Context, companyID string) (time.Time, *time.Location) {
	now := s.now()
	loc := time.UTC
	if s.settings != nil {
		if settings, err := s.settings.Settings(ctx, companyID); err == nil {
			if parsed, err := time.LoadLocation(settings.Timezone); err == nil {
				loc = parsed
			}
		}
	}
	return now, loc
}

// statusFor derives present or late from the tenant work-day start plus a
// fixed grace period.
func (s *AttendanceService) statusFor(ctx context.Context, companyID string, local time.Time) models.AttendanceStatus {
	start := models.DefaultCompanySettings().WorkDayStart
	if s.settings != nil {
		if settings, err := s.settings.Settings(ctx, companyID); err == nil && settings.WorkDayStart != "" {
			start = settings.WorkDayStart
		}
	}

	parsed, err := time.Parse(clockTimeLayout, start)
	if err != nil {
		return models.AttendancePresent
	}

	threshold := time.Date(local.Year(), local.Month(), local.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, local.Location()).Add(lateGrace)
	if local.After(threshold) {
		return models.AttendanceLate
	}
	return models.AttendancePresent
}
