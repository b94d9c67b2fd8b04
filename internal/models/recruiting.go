package models

import "time"

// JobStatus tracks a posting's public visibility.
type JobStatus string

const (
	JobDraft  JobStatus = "draft"
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
)

// JobPosting advertises an open position within a company.
type JobPosting struct {
	BaseModel

	CompanyID   string `gorm:"type:uuid;not null;index" json:"company_id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`

	Department     string `json:"department"`
	Location       string `json:"location"`
	EmploymentType string `gorm:"type:varchar(30)" json:"employment_type"`

	Status   JobStatus  `gorm:"type:varchar(20);not null;default:draft;index" json:"status"`
	PostedBy string     `gorm:"type:uuid;not null" json:"posted_by"`
	ClosedAt *time.Time `json:"closed_at"`

	Candidates []Candidate `gorm:"foreignKey:JobPostingID" json:"candidates,omitempty"`
}

// CandidateStage orders the hiring pipeline; hired and rejected are terminal.
type CandidateStage string

const (
	StageApplied   CandidateStage = "applied"
	StageScreening CandidateStage = "screening"
	StageInterview CandidateStage = "interview"
	StageOffer     CandidateStage = "offer"
	StageHired     CandidateStage = "hired"
	StageRejected  CandidateStage = "rejected"
)

// TerminalStage reports whether a stage permits no further transitions.
func TerminalStage(s CandidateStage) bool {
	return s == StageHired || s == StageRejected
}

// Candidate is an applicant attached to a specific job posting.
type Candidate struct {
	BaseModel

	CompanyID    string `gorm:"type:uuid;not null;index" json:"company_id"`
	JobPostingID string `gorm:"type:uuid;not null;uniqueIndex:idx_candidates_job_email" json:"job_posting_id"`

	Name      string `gorm:"not null" json:"name"`
	Email     string `gorm:"not null;uniqueIndex:idx_candidates_job_email" json:"email"`
	Phone     string `json:"phone"`
	ResumeURL string `json:"resume_url"`

	Stage CandidateStage `gorm:"type:varchar(20);not null;default:applied;index" json:"stage"`
	Notes string         `json:"notes"`

	JobPosting *JobPosting `json:"job_posting,omitempty"`
	Interviews []Interview `gorm:"foreignKey:CandidateID" json:"interviews,omitempty"`
}

// InterviewStatus tracks scheduling state.
type InterviewStatus string

const (
	InterviewScheduled InterviewStatus = "scheduled"
	InterviewCompleted InterviewStatus = "completed"
	InterviewCancelled InterviewStatus = "cancelled"
)

// Interview pairs a candidate with an interviewer at a scheduled time.
type Interview struct {
	BaseModel

	CompanyID     string `gorm:"type:uuid;not null;index" json:"company_id"`
	CandidateID   string `gorm:"type:uuid;not null;index" json:"candidate_id"`
	InterviewerID string `gorm:"type:uuid;not null" json:"interviewer_id"`

	ScheduledAt time.Time `gorm:"not null" json:"scheduled_at"`
	DurationMin int       `gorm:"default:60" json:"duration_min"`
	Kind        string    `gorm:"type:varchar(20);not null;default:video" json:"kind"`

	Status   InterviewStatus `gorm:"type:varchar(20);not null;default:scheduled;index" json:"status"`
	Feedback string          `json:"feedback"`
	Rating   int             `json:"rating"`

	Candidate   *Candidate `json:"candidate,omitempty"`
	Interviewer *User      `gorm:"foreignKey:InterviewerID" json:"interviewer,omitempty"`
}
