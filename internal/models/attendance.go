package models

import "time"

// AttendanceStatus is derived from clock-in time against company settings.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceHalfDay AttendanceStatus = "half_day"
)

// Attendance records one working day per user. The (user_id, date) unique
// index is what rejects concurrent duplicate clock-ins.
type Attendance struct {
	BaseModel

	CompanyID string `gorm:"type:uuid;not null;index" json:"company_id"`
	UserID    string `gorm:"type:uuid;not null;uniqueIndex:idx_attendances_user_date" json:"user_id"`

	// Date is the calendar day in YYYY-MM-DD form, local to the company timezone.
	Date string `gorm:"type:varchar(10);not null;uniqueIndex:idx_attendances_user_date" json:"date"`

	ClockIn  time.Time  `gorm:"not null" json:"clock_in"`
	ClockOut *time.Time `json:"clock_out"`

	Status      AttendanceStatus `gorm:"type:varchar(20);not null;default:present" json:"status"`
	WorkMinutes int              `json:"work_minutes"`
	Notes       string           `json:"notes"`

	User *User `json:"user,omitempty"`
}
