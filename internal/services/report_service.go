package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/models"
	apperrors "github.com/talenthr/talenthr/pkg/errors"
)

// ReportService aggregates attendance and leave figures over a period, with
// the same visibility rules as the listing endpoints.
type ReportService struct {
	db  *gorm.DB
	now func() time.Time
}

// ReportOption customises ReportService behaviour.
type ReportOption func(*ReportService)

// WithReportClock injects a custom clock primarily for testing.
func WithReportClock(clock func() time.Time) ReportOption {
	return func(s *ReportService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewReportService constructs a ReportService.
func NewReportService(db *gorm.DB, opts ...ReportOption) (*ReportService, error) {
	if db == nil {
		return nil, errors.New("report service: db is required")
	}

	service := &ReportService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Period is an inclusive date range in YYYY-MM-DD form.
type Period struct {
	From string
	To   string
}

// normalise defaults an empty period to the current calendar month.
func (p Period) normalise(now time.Time) (Period, error) {
	if p.From == "" && p.To == "" {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Period{
			From: start.Format(attendanceDateLayout),
			To:   start.AddDate(0, 1, -1).Format(attendanceDateLayout),
		}, nil
	}

	from, err := time.Parse(attendanceDateLayout, p.From)
	if err != nil {
		return Period{}, apperrors.NewBadRequest("invalid from date")
	}
	to, err := time.Parse(attendanceDateLayout, p.To)
	if err != nil {
		return Period{}, apperrors.NewBadRequest("invalid to date")
	}
	if to.Before(from) {
		return Period{}, apperrors.NewBadRequest("period end precedes start")
	}
	return p, nil
}

// AttendanceUserSummary aggregates one user's attendance over the period.
type AttendanceUserSummary struct {
	UserID       string `json:"user_id"`
	DaysPresent  int64  `json:"days_present"`
	DaysLate     int64  `json:"days_late"`
	TotalMinutes int64  `json:"total_minutes"`
}

// AttendanceReport is the period-wide attendance rollup.
type AttendanceReport struct {
	Period  Period                  `json:"period"`
	Users   []AttendanceUserSummary `json:"users"`
	Overall AttendanceUserSummary   `json:"overall"`
}

// Attendance aggregates attendance rows visible to the actor over the period.
func (s *ReportService) Attendance(ctx context.Context, actor Actor, period Period) (*AttendanceReport, error) {
	ctx = ensureContext(ctx)

	period, err := period.normalise(s.now())
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&models.Attendance{})
	query = scopeByRole(s.db, query, actor, "user_id")
	query = query.Where("date >= ? AND date <= ?", period.From, period.To)

	var rows []AttendanceUserSummary
	if err := query.
		Select(
			"user_id, COUNT(*) AS days_present, "+
				"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS days_late, "+
				"COALESCE(SUM(work_minutes), 0) AS total_minutes",
			models.AttendanceLate,
		).
		Group("user_id").
		Order("user_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("report service: attendance: %w", err)
	}

	report := &AttendanceReport{Period: period, Users: rows}
	for _, row := range rows {
		report.Overall.DaysPresent += row.DaysPresent
		report.Overall.DaysLate += row.DaysLate
		report.Overall.TotalMinutes += row.TotalMinutes
	}
	return report, nil
}

// LeaveUserSummary aggregates one user's settled and pending leave days.
type LeaveUserSummary struct {
	UserID       string  `json:"user_id"`
	ApprovedDays float64 `json:"approved_days"`
	PendingDays  float64 `json:"pending_days"`
	RejectedDays float64 `json:"rejected_days"`
}

// LeaveReport is the period-wide leave rollup.
type LeaveReport struct {
	Period  Period             `json:"period"`
	Users   []LeaveUserSummary `json:"users"`
	Overall LeaveUserSummary   `json:"overall"`
}

// Leave aggregates leave requests overlapping the period, visible to the actor.
func (s *ReportService) Leave(ctx context.Context, actor Actor, period Period) (*LeaveReport, error) {
	ctx = ensureContext(ctx)

	period, err := period.normalise(s.now())
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&models.LeaveRequest{})
	query = scopeByRole(s.db, query, actor, "user_id")
	query = query.Where("start_date <= ? AND end_date >= ?", period.To, period.From)

	var rows []LeaveUserSummary
	if err := query.
		Select(
			"user_id, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN days ELSE 0 END), 0) AS approved_days, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN days ELSE 0 END), 0) AS pending_days, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN days ELSE 0 END), 0) AS rejected_days",
			models.LeaveApproved, models.LeavePending, models.LeaveRejected,
		).
		Group("user_id").
		Order("user_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("report service: leave: %w", err)
	}

	report := &LeaveReport{Period: period, Users: rows}
	for _, row := range rows {
		report.Overall.ApprovedDays += row.ApprovedDays
		report.Overall.PendingDays += row.PendingDays
		report.Overall.RejectedDays += row.RejectedDays
	}
	return report, nil
}
