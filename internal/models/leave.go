package models

import "time"

// LeaveType defines a leave category with its yearly quota and carry-forward rules.
type LeaveType struct {
	BaseModel

	CompanyID string `gorm:"type:uuid;not null;uniqueIndex:idx_leave_types_company_code" json:"company_id"`
	Name      string `gorm:"not null" json:"name"`
	Code      string `gorm:"type:varchar(20);not null;uniqueIndex:idx_leave_types_company_code" json:"code"`

	QuotaDays        float64 `gorm:"not null" json:"quota_days"`
	CarryForward     bool    `gorm:"default:false" json:"carry_forward"`
	MaxCarryDays     float64 `json:"max_carry_days"`
	RequiresApproval bool    `gorm:"default:true" json:"requires_approval"`

	Status string `gorm:"type:varchar(20);not null;default:active" json:"status"`
}

// LeaveRequestStatus tracks a request through review.
type LeaveRequestStatus string

const (
	LeavePending   LeaveRequestStatus = "pending"
	LeaveApproved  LeaveRequestStatus = "approved"
	LeaveRejected  LeaveRequestStatus = "rejected"
	LeaveCancelled LeaveRequestStatus = "cancelled"
)

// LeaveRequest references a leave type and an inclusive date range.
type LeaveRequest struct {
	BaseModel

	CompanyID   string `gorm:"type:uuid;not null;index" json:"company_id"`
	UserID      string `gorm:"type:uuid;not null;index" json:"user_id"`
	LeaveTypeID string `gorm:"type:uuid;not null;index" json:"leave_type_id"`

	StartDate string  `gorm:"type:varchar(10);not null" json:"start_date"`
	EndDate   string  `gorm:"type:varchar(10);not null" json:"end_date"`
	Days      float64 `gorm:"not null" json:"days"`
	Reason    string  `json:"reason"`

	Status     LeaveRequestStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	ReviewerID *string            `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	ReviewedAt *time.Time         `json:"reviewed_at"`
	ReviewNote string             `json:"review_note"`

	User      *User      `json:"user,omitempty"`
	LeaveType *LeaveType `json:"leave_type,omitempty"`
}

// LeaveBalance holds per-year counters; the available figure is always derived,
// never stored.
type LeaveBalance struct {
	BaseModel

	CompanyID   string `gorm:"type:uuid;not null;index" json:"company_id"`
	UserID      string `gorm:"type:uuid;not null;uniqueIndex:idx_leave_balances_user_type_year" json:"user_id"`
	LeaveTypeID string `gorm:"type:uuid;not null;uniqueIndex:idx_leave_balances_user_type_year" json:"leave_type_id"`
	Year        int    `gorm:"not null;uniqueIndex:idx_leave_balances_user_type_year" json:"year"`

	Allocated float64 `gorm:"not null" json:"allocated"`
	Used      float64 `gorm:"default:0" json:"used"`
	Pending   float64 `gorm:"default:0" json:"pending"`

	LeaveType *LeaveType `json:"leave_type,omitempty"`
}

// Available returns the balance still open for new requests.
func (b *LeaveBalance) Available() float64 {
	return b.Allocated - b.Used - b.Pending
}
