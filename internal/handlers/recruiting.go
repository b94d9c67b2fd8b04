package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/models"
	"github.com/talenthr/talenthr/internal/services"
	appErrors "github.com/talenthr/talenthr/pkg/errors"
	"github.com/talenthr/talenthr/pkg/response"
)

// RecruitingHandler covers job postings, candidates and interviews.
type RecruitingHandler struct {
	recruiting *services.RecruitingService
}

// NewRecruitingHandler wires the recruiting endpoints.
func NewRecruitingHandler(recruiting *services.RecruitingService) *RecruitingHandler {
	return &RecruitingHandler{recruiting: recruiting}
}

type createJobRequest struct {
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description" validate:"max=5000"`
	Department     string `json:"department" validate:"max=120"`
	Location       string `json:"location" validate:"max=120"`
	EmploymentType string `json:"employment_type" validate:"max=40"`
	Open           bool   `json:"open"`
}

// CreateJob records a posting, optionally publishing it immediately.
func (h *RecruitingHandler) CreateJob(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req createJobRequest
	if !bindAndValidate(c, &req) {
		return
	}

	job, err := h.recruiting.CreateJob(requestContext(c), actor, services.CreateJobInput{
		Title:          req.Title,
		Description:    req.Description,
		Department:     req.Department,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		Open:           req.Open,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"job": job})
}

// ListJobs returns the company's postings, optionally filtered by status.
func (h *RecruitingHandler) ListJobs(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	jobs, err := h.recruiting.ListJobs(requestContext(c), actor, models.JobStatus(strings.TrimSpace(c.Query("status"))))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"jobs": jobs})
}

type updateJobRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Department     *string `json:"department"`
	Location       *string `json:"location"`
	EmploymentType *string `json:"employment_type"`
	Open           *bool   `json:"open"`
}

// UpdateJob edits a posting.
func (h *RecruitingHandler) UpdateJob(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req updateJobRequest
	if !bindAndValidate(c, &req) {
		return
	}

	job, err := h.recruiting.UpdateJob(requestContext(c), actor, c.Param("id"), services.UpdateJobInput{
		Title:          req.Title,
		Description:    req.Description,
		Department:     req.Department,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		Open:           req.Open,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"job": job})
}

// CloseJob stops accepting applications for a posting.
func (h *RecruitingHandler) CloseJob(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	job, err := h.recruiting.CloseJob(requestContext(c), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"job": job})
}

type createCandidateRequest struct {
	JobPostingID string `json:"job_posting_id" validate:"required"`
	Name         string `json:"name" validate:"required,max=160"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"max=40"`
	ResumeURL    string `json:"resume_url" validate:"max=500"`
	Notes        string `json:"notes" validate:"max=2000"`
}

// CreateCandidate records an application against an open posting.
func (h *RecruitingHandler) CreateCandidate(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req createCandidateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	candidate, err := h.recruiting.CreateCandidate(requestContext(c), actor, services.CreateCandidateInput{
		JobPostingID: req.JobPostingID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		ResumeURL:    req.ResumeURL,
		Notes:        req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"candidate": candidate})
}

// ListCandidates returns candidates, optionally scoped to a job or stage.
func (h *RecruitingHandler) ListCandidates(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	candidates, err := h.recruiting.ListCandidates(requestContext(c), actor, services.ListCandidatesInput{
		JobPostingID: c.Query("job_id"),
		Stage:        models.CandidateStage(strings.TrimSpace(c.Query("stage"))),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"candidates": candidates})
}

type updateCandidateRequest struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	ResumeURL *string `json:"resume_url"`
	Notes     *string `json:"notes"`
}

// UpdateCandidate edits candidate contact details and notes.
func (h *RecruitingHandler) UpdateCandidate(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req updateCandidateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	candidate, err := h.recruiting.UpdateCandidate(requestContext(c), actor, c.Param("id"), services.UpdateCandidateInput{
		Name:      req.Name,
		Phone:     req.Phone,
		ResumeURL: req.ResumeURL,
		Notes:     req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"candidate": candidate})
}

type setStageRequest struct {
	Stage string `json:"stage" validate:"required"`
}

// SetStage moves a candidate through the pipeline.
func (h *RecruitingHandler) SetStage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req setStageRequest
	if !bindAndValidate(c, &req) {
		return
	}

	candidate, err := h.recruiting.SetCandidateStage(requestContext(c), actor, c.Param("id"), models.CandidateStage(req.Stage))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"candidate": candidate})
}

type scheduleInterviewRequest struct {
	CandidateID   string    `json:"candidate_id" validate:"required"`
	InterviewerID string    `json:"interviewer_id" validate:"required"`
	ScheduledAt   time.Time `json:"scheduled_at" validate:"required"`
	DurationMin   int       `json:"duration_min" validate:"gte=0,lte=480"`
	Kind          string    `json:"kind" validate:"max=40"`
}

// ScheduleInterview books an interview for a pipeline candidate.
func (h *RecruitingHandler) ScheduleInterview(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req scheduleInterviewRequest
	if !bindAndValidate(c, &req) {
		return
	}

	interview, err := h.recruiting.ScheduleInterview(requestContext(c), actor, services.ScheduleInterviewInput{
		CandidateID:   req.CandidateID,
		InterviewerID: req.InterviewerID,
		ScheduledAt:   req.ScheduledAt,
		DurationMin:   req.DurationMin,
		Kind:          req.Kind,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"interview": interview})
}

// ListInterviews returns interviews, soonest first.
func (h *RecruitingHandler) ListInterviews(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	interviews, err := h.recruiting.ListInterviews(requestContext(c), actor, services.ListInterviewsInput{
		CandidateID:   c.Query("candidate_id"),
		InterviewerID: c.Query("interviewer_id"),
		Status:        models.InterviewStatus(strings.TrimSpace(c.Query("status"))),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"interviews": interviews})
}

type completeInterviewRequest struct {
	Feedback string `json:"feedback" validate:"max=2000"`
	Rating   int    `json:"rating" validate:"gte=0,lte=5"`
}

// CompleteInterview records the outcome of a scheduled interview.
func (h *RecruitingHandler) CompleteInterview(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req completeInterviewRequest
	if !bindAndValidate(c, &req) {
		return
	}

	interview, err := h.recruiting.CompleteInterview(requestContext(c), actor, c.Param("id"), req.Feedback, req.Rating)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"interview": interview})
}

// CancelInterview withdraws a scheduled interview.
func (h *RecruitingHandler) CancelInterview(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	interview, err := h.recruiting.CancelInterview(requestContext(c), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"interview": interview})
}
