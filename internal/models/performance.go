package models

import "time"

// GoalStatus is always derived from progress; it is stored for query convenience.
type GoalStatus string

const (
	GoalNotStarted GoalStatus = "not_started"
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
)

// GoalStatusFor maps a progress percentage onto the goal status.
func GoalStatusFor(progress int) GoalStatus {
	switch {
	case progress <= 0:
		return GoalNotStarted
	case progress >= 100:
		return GoalCompleted
	}
	return GoalInProgress
}

// Goal is an employee-scoped objective with a progress percentage.
type Goal struct {
	BaseModel

	CompanyID string `gorm:"type:uuid;not null;index" json:"company_id"`
	UserID    string `gorm:"type:uuid;not null;index" json:"user_id"`

	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`

	Progress int        `gorm:"default:0" json:"progress"`
	Status   GoalStatus `gorm:"type:varchar(20);not null;default:not_started" json:"status"`
	DueDate  *time.Time `json:"due_date"`

	User *User `json:"user,omitempty"`
}

// ReviewStatus tracks a performance review from draft to acknowledgement.
type ReviewStatus string

const (
	ReviewDraft        ReviewStatus = "draft"
	ReviewSubmitted    ReviewStatus = "submitted"
	ReviewAcknowledged ReviewStatus = "acknowledged"
)

// PerformanceReview captures a reviewer's assessment of an employee for a period.
type PerformanceReview struct {
	BaseModel

	CompanyID  string `gorm:"type:uuid;not null;index" json:"company_id"`
	EmployeeID string `gorm:"type:uuid;not null;index" json:"employee_id"`
	ReviewerID string `gorm:"type:uuid;not null" json:"reviewer_id"`

	Period       string `gorm:"type:varchar(20);not null" json:"period"`
	Rating       int    `json:"rating"`
	Strengths    string `json:"strengths"`
	Improvements string `json:"improvements"`

	Status         ReviewStatus `gorm:"type:varchar(20);not null;default:draft;index" json:"status"`
	SubmittedAt    *time.Time   `json:"submitted_at"`
	AcknowledgedAt *time.Time   `json:"acknowledged_at"`

	Employee *User `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}
