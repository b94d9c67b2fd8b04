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
)

var (
	// ErrJobNotFound indicates no posting within the company.
	ErrJobNotFound = apperrors.New("JOB_NOT_FOUND", "Job posting not found", http.StatusNotFound)
	// ErrJobClosed rejects candidate additions to closed or draft postings.
	ErrJobClosed = apperrors.New("JOB_NOT_OPEN", "Job posting is not open", http.StatusBadRequest)
	// ErrCandidateNotFound indicates no candidate within the company.
	ErrCandidateNotFound = apperrors.New("CANDIDATE_NOT_FOUND", "Candidate not found", http.StatusNotFound)
	// ErrCandidateExists enforces one application per (job, email).
	ErrCandidateExists = apperrors.New("CANDIDATE_EXISTS", "This candidate has already applied to the job", http.StatusConflict)
	// ErrCandidateTerminal rejects transitions out of hired or rejected.
	ErrCandidateTerminal = apperrors.New("CANDIDATE_STAGE_TERMINAL", "Candidate is in a terminal stage", http.StatusBadRequest)
	// ErrStageInvalid rejects unknown pipeline stages.
	ErrStageInvalid = apperrors.New("CANDIDATE_STAGE_INVALID", "Unknown candidate stage", http.StatusBadRequest)
	// ErrInterviewNotFound indicates no interview within the company.
	ErrInterviewNotFound = apperrors.New("INTERVIEW_NOT_FOUND", "Interview not found", http.StatusNotFound)
	// ErrInterviewNotScheduled rejects actions on settled interviews.
	ErrInterviewNotScheduled = apperrors.New("INTERVIEW_NOT_SCHEDULED", "Interview is not in the scheduled state", http.StatusBadRequest)
)

var candidateStages = map[models.CandidateStage]struct{}{
	models.StageApplied:   {},
	models.StageScreening: {},
	models.StageInterview: {},
	models.StageOffer:     {},
	models.StageHired:     {},
	models.StageRejected:  {},
}

// RecruitingOption customises RecruitingService behaviour.
type RecruitingOption func(*RecruitingService)

// WithRecruitingClock injects a custom clock primarily for testing.
func WithRecruitingClock(clock func() time.Time) RecruitingOption {
	return func(s *RecruitingService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// RecruitingService manages job postings, candidate pipelines and interviews.
type RecruitingService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRecruitingService constructs a RecruitingService.
func NewRecruitingService(db *gorm.DB, opts ...RecruitingOption) (*RecruitingService, error) {
	if db == nil {
		return nil, errors.New("recruiting service: db is required")
	}

	service := &RecruitingService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CreateJobInput describes a new posting.
type CreateJobInput struct {
	Title          string
	Description    string
	Department     string
	Location       string
	EmploymentType string
	Open           bool
}

// CreateJob records a posting, optionally publishing it immediately.
func (s *RecruitingService) CreateJob(ctx context.Context, actor Actor, input CreateJobInput) (*models.JobPosting, error) {
	ctx = ensureContext(ctx)

	title := trimmed(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}

	status := models.JobDraft
	if input.Open {
		status = models.JobOpen
	}

	job := &models.JobPosting{
		CompanyID:      actor.CompanyID,
		Title:          title,
		Description:    trimmed(input.Description),
		Department:     trimmed(input.Department),
		Location:       trimmed(input.Location),
		EmploymentType: trimmed(input.EmploymentType),
		Status:         status,
		PostedBy:       actor.UserID,
	}

	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("recruiting service: create job: %w", err)
	}
	return job, nil
}

// ListJobs returns the company's postings, optionally filtered by status.
func (s *RecruitingService) ListJobs(ctx context.Context, actor Actor, status models.JobStatus) ([]models.JobPosting, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Where("company_id = ?", actor.CompanyID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var jobs []models.JobPosting
	if err := query.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("recruiting service: list jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJobInput carries mutable posting fields.
type UpdateJobInput struct {
	Title          *string
	Description    *string
	Department     *string
	Location       *string
	EmploymentType *string
	Open           *bool
}

// UpdateJob modifies a posting. Setting Open publishes a draft; closed
// postings stay closed through CloseJob only.
func (s *RecruitingService) UpdateJob(ctx context.Context, actor Actor, id string, input UpdateJobInput) (*models.JobPosting, error) {
	ctx = ensureContext(ctx)

	job, err := s.findJob(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		if trimmed(*input.Title) == "" {
			return nil, apperrors.NewBadRequest("title cannot be empty")
		}
		updates["title"] = trimmed(*input.Title)
	}
	if input.Description != nil {
		updates["description"] = trimmed(*input.Description)
	}
	if input.Department != nil {
		updates["department"] = trimmed(*input.Department)
	}
	if input.Location != nil {
		updates["location"] = trimmed(*input.Location)
	}
	if input.EmploymentType != nil {
		updates["employment_type"] = trimmed(*input.EmploymentType)
	}
	if input.Open != nil && *input.Open && job.Status == models.JobDraft {
		updates["status"] = models.JobOpen
	}
	if len(updates) == 0 {
		return job, nil
	}

	if err := s.db.WithContext(ctx).Model(job).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("recruiting service: update job: %w", err)
	}
	return job, nil
}

// CloseJob stops a posting from accepting candidates.
func (s *RecruitingService) CloseJob(ctx context.Context, actor Actor, id string) (*models.JobPosting, error) {
	ctx = ensureContext(ctx)

	job, err := s.findJob(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if job.Status == models.JobClosed {
		return job, nil
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(job).Updates(map[string]any{
		"status":    models.JobClosed,
		"closed_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("recruiting service: close job: %w", err)
	}

	job.Status = models.JobClosed
	job.ClosedAt = &now
	return job, nil
}

// CreateCandidateInput attaches an applicant to an open posting.
type CreateCandidateInput struct {
	JobPostingID string
	Name         string
	Email        string
	Phone        string
	ResumeURL    string
	Notes        string
}

// CreateCandidate records an application. The (job, email) unique index
// rejects concurrent duplicates the pre-check cannot see.
func (s *RecruitingService) CreateCandidate(ctx context.Context, actor Actor, input CreateCandidateInput) (*models.Candidate, error) {
	ctx = ensureContext(ctx)

	name := trimmed(input.Name)
	email := normaliseEmail(input.Email)
	switch {
	case name == "":
		return nil, apperrors.NewBadRequest("name is required")
	case email == "":
		return nil, apperrors.NewBadRequest("email is required")
	}

	job, err := s.findJob(ctx, actor.CompanyID, input.JobPostingID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobOpen {
		return nil, ErrJobClosed
	}

	candidate := &models.Candidate{
		CompanyID:    actor.CompanyID,
		JobPostingID: job.ID,
		Name:         name,
		Email:        email,
		Phone:        trimmed(input.Phone),
		ResumeURL:    trimmed(input.ResumeURL),
		Stage:        models.StageApplied,
		Notes:        trimmed(input.Notes),
	}

	if err := s.db.WithContext(ctx).Create(candidate).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrCandidateExists
		}
		return nil, fmt.Errorf("recruiting service: create candidate: %w", err)
	}
	return candidate, nil
}

// ListCandidatesInput filters candidate listings.
type ListCandidatesInput struct {
	JobPostingID string
	Stage        models.CandidateStage
}

// ListCandidates returns the company's candidates, newest application first.
func (s *RecruitingService) ListCandidates(ctx context.Context, actor Actor, input ListCandidatesInput) ([]models.Candidate, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Where("company_id = ?", actor.CompanyID)
	if id := trimmed(input.JobPostingID); id != "" {
		query = query.Where("job_posting_id = ?", id)
	}
	if input.Stage != "" {
		query = query.Where("stage = ?", input.Stage)
	}

	var candidates []models.Candidate
	if err := query.Order("created_at DESC").Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("recruiting service: list candidates: %w", err)
	}
	return candidates, nil
}

// UpdateCandidateInput carries mutable candidate fields.
type UpdateCandidateInput struct {
	Name      *string
	Phone     *string
	ResumeURL *string
	Notes     *string
}

// UpdateCandidate modifies candidate contact details and notes.
func (s *RecruitingService) UpdateCandidate(ctx context.Context, actor Actor, id string, input UpdateCandidateInput) (*models.Candidate, error) {
	ctx = ensureContext(ctx)

	candidate, err := s.findCandidate(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if trimmed(*input.Name) == "" {
			return nil, apperrors.NewBadRequest("name cannot be empty")
		}
		updates["name"] = trimmed(*input.Name)
	}
	if input.Phone != nil {
		updates["phone"] = trimmed(*input.Phone)
	}
	if input.ResumeURL != nil {
		updates["resume_url"] = trimmed(*input.ResumeURL)
	}
	if input.Notes != nil {
		updates["notes"] = trimmed(*input.Notes)
	}
	if len(updates) == 0 {
		return candidate, nil
	}

	if err := s.db.WithContext(ctx).Model(candidate).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("recruiting service: update candidate: %w", err)
	}
	return candidate, nil
}

// SetCandidateStage moves a candidate through the pipeline. Hired and rejected
// are terminal.
func (s *RecruitingService) SetCandidateStage(ctx context.Context, actor Actor, id string, stage models.CandidateStage) (*models.Candidate, error) {
	ctx = ensureContext(ctx)

	if _, ok := candidateStages[stage]; !ok {
		return nil, ErrStageInvalid
	}

	candidate, err := s.findCandidate(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if models.TerminalStage(candidate.Stage) {
		return nil, ErrCandidateTerminal
	}

	if err := s.db.WithContext(ctx).Model(candidate).Update("stage", stage).Error; err != nil {
		return nil, fmt.Errorf("recruiting service: set stage: %w", err)
	}

	candidate.Stage = stage
	return candidate, nil
}

// ScheduleInterviewInput books an interviewer for a candidate.
type ScheduleInterviewInput struct {
	CandidateID   string
	InterviewerID string
	ScheduledAt   time.Time
	DurationMin   int
	Kind          string
}

// ScheduleInterview books an interview. The candidate must still be in the
// pipeline and the interviewer an active user of the company.
func (s *RecruitingService) ScheduleInterview(ctx context.Context, actor Actor, input ScheduleInterviewInput) (*models.Interview, error) {
	ctx = ensureContext(ctx)

	if input.ScheduledAt.IsZero() {
		return nil, apperrors.NewBadRequest("scheduled time is required")
	}

	candidate, err := s.findCandidate(ctx, actor.CompanyID, input.CandidateID)
	if err != nil {
		return nil, err
	}
	if models.TerminalStage(candidate.Stage) {
		return nil, ErrCandidateTerminal
	}

	var interviewers int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND company_id = ? AND status = ?",
			input.InterviewerID, actor.CompanyID, models.UserActive).
		Count(&interviewers).Error; err != nil {
		return nil, fmt.Errorf("recruiting service: check interviewer: %w", err)
	}
	if interviewers == 0 {
		return nil, apperrors.NewBadRequest("interviewer must be an active user in the company")
	}

	duration := input.DurationMin
	if duration <= 0 {
		duration = 60
	}
	kind := trimmed(input.Kind)
	if kind == "" {
		kind = "video"
	}

	interview := &models.Interview{
		CompanyID:     actor.CompanyID,
		CandidateID:   candidate.ID,
		InterviewerID: input.InterviewerID,
		ScheduledAt:   input.ScheduledAt,
		DurationMin:   duration,
		Kind:          kind,
		Status:        models.InterviewScheduled,
	}

	if err := s.db.WithContext(ctx).Create(interview).Error; err != nil {
		return nil, fmt.Errorf("recruiting service: schedule interview: %w", err)
	}
	return interview, nil
}

// ListInterviewsInput filters interview listings.
type ListInterviewsInput struct {
	CandidateID   string
	InterviewerID string
	Status        models.InterviewStatus
}

// ListInterviews returns the company's interviews, soonest first.
func (s *RecruitingService) ListInterviews(ctx context.Context, actor Actor, input ListInterviewsInput) ([]models.Interview, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Where("company_id = ?", actor.CompanyID)
	if id := trimmed(input.CandidateID); id != "" {
		query = query.Where("candidate_id = ?", id)
	}
	if id := trimmed(input.InterviewerID); id != "" {
		query = query.Where("interviewer_id = ?", id)
	}
	if input.Status != "" {
		query = query.Where("status = ?", input.Status)
	}

	var interviews []models.Interview
	if err := query.
		Preload("Candidate").
		Order("scheduled_at ASC").
		Find(&interviews).Error; err != nil {
		return nil, fmt.Errorf("recruiting service: list interviews: %w", err)
	}
	return interviews, nil
}

// CompleteInterview records the outcome of a scheduled interview.
func (s *RecruitingService) CompleteInterview(ctx context.Context, actor Actor, id, feedback string, rating int) (*models.Interview, error) {
	ctx = ensureContext(ctx)

	if rating != 0 && (rating < 1 || rating > 5) {
		return nil, ErrRatingInvalid
	}

	interview, err := s.findInterview(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if interview.Status != models.InterviewScheduled {
		return nil, ErrInterviewNotScheduled
	}

	if err := s.db.WithContext(ctx).Model(interview).Updates(map[string]any{
		"status":   models.InterviewCompleted,
		"feedback": trimmed(feedback),
		"rating":   rating,
	}).Error; err != nil {
		return nil, fmt.Errorf("recruiting service: complete interview: %w", err)
	}

	interview.Status = models.InterviewCompleted
	interview.Feedback = trimmed(feedback)
	interview.Rating = rating
	return interview, nil
}

// CancelInterview withdraws a scheduled interview.
func (s *RecruitingService) CancelInterview(ctx context.Context, actor Actor, id string) (*models.Interview, error) {
	ctx = ensureContext(ctx)

	interview, err := s.findInterview(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if interview.Status != models.InterviewScheduled {
		return nil, ErrInterviewNotScheduled
	}

	if err := s.db.WithContext(ctx).
		Model(interview).
		Update("status", models.InterviewCancelled).Error; err != nil {
		return nil, fmt.Errorf("recruiting service: cancel interview: %w", err)
	}

	interview.Status = models.InterviewCancelled
	return interview, nil
}

func (s *RecruitingService) findJob(ctx context.Context, companyID, id string) (*models.JobPosting, error) {
	var job models.JobPosting
	err := s.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("recruiting service: find job: %w", err)
	}
	return &job, nil
}

func (s *RecruitingService) findCandidate(ctx context.Context, companyID, id string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := s.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&candidate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCandidateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("recruiting service: find candidate: %w", err)
	}
	return &candidate, nil
}

func (s *RecruitingService) findInterview(ctx context.Context, companyID, id string) (*models.Interview, error) {
	var interview models.Interview
	err := s.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&interview).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInterviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("recruiting service: find interview: %w", err)
	}
	return &interview, nil
}
