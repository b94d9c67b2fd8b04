package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/services"
	appErrors "github.com/talenthr/talenthr/pkg/errors"
	"github.com/talenthr/talenthr/pkg/response"
)

// PerformanceHandler covers goals and performance reviews.
type PerformanceHandler struct {
	performance *services.PerformanceService
}

// NewPerformanceHandler wires the performance endpoints.
func NewPerformanceHandler(performance *services.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{performance: performance}
}

type createGoalRequest struct {
	UserID      string     `json:"user_id"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateGoal records a goal for the actor or a visible report.
func (h *PerformanceHandler) CreateGoal(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req createGoalRequest
	if !bindAndValidate(c, &req) {
		return
	}

	goal, err := h.performance.CreateGoal(requestContext(c), actor, services.CreateGoalInput{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"goal": goal})
}

// ListGoals returns goals for a user the actor may see.
func (h *PerformanceHandler) ListGoals(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	goals, err := h.performance.ListGoals(requestContext(c), actor, c.Query("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"goals": goals})
}

type updateGoalRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Progress    *int       `json:"progress"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateGoal edits a goal. Status always follows progress.
func (h *PerformanceHandler) UpdateGoal(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req updateGoalRequest
	if !bindAndValidate(c, &req) {
		return
	}

	goal, err := h.performance.UpdateGoal(requestContext(c), actor, c.Param("id"), services.UpdateGoalInput{
		Title:       req.Title,
		Description: req.Description,
		Progress:    req.Progress,
		DueDate:     req.DueDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"goal": goal})
}

// DeleteGoal removes a goal.
func (h *PerformanceHandler) DeleteGoal(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.performance.DeleteGoal(requestContext(c), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

type createReviewRequest struct {
	EmployeeID   string `json:"employee_id" validate:"required"`
	Period       string `json:"period" validate:"required,max=40"`
	Rating       int    `json:"rating" validate:"gte=0,lte=5"`
	Strengths    string `json:"strengths" validate:"max=2000"`
	Improvements string `json:"improvements" validate:"max=2000"`
}

// CreateReview opens a draft review with the actor as reviewer.
func (h *PerformanceHandler) CreateReview(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req createReviewRequest
	if !bindAndValidate(c, &req) {
		return
	}

	review, err := h.performance.CreateReview(requestContext(c), actor, services.CreateReviewInput{
		EmployeeID:   req.EmployeeID,
		Period:       req.Period,
		Rating:       req.Rating,
		Strengths:    req.Strengths,
		Improvements: req.Improvements,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"review": review})
}

// ListReviews returns the reviews visible to the actor.
func (h *PerformanceHandler) ListReviews(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	reviews, err := h.performance.ListReviews(requestContext(c), actor, c.Query("employee_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reviews": reviews})
}

type updateReviewRequest struct {
	Rating       *int    `json:"rating"`
	Strengths    *string `json:"strengths"`
	Improvements *string `json:"improvements"`
}

// UpdateReview edits a draft review.
func (h *PerformanceHandler) UpdateReview(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req updateReviewRequest
	if !bindAndValidate(c, &req) {
		return
	}

	review, err := h.performance.UpdateReview(requestContext(c), actor, c.Param("id"), services.UpdateReviewInput{
		Rating:       req.Rating,
		Strengths:    req.Strengths,
		Improvements: req.Improvements,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"review": review})
}

// SubmitReview finalises a draft. A rating is mandatory at this point.
func (h *PerformanceHandler) SubmitReview(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	review, err := h.performance.SubmitReview(requestContext(c), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"review": review})
}

// AcknowledgeReview lets the reviewed employee confirm they have read it.
func (h *PerformanceHandler) AcknowledgeReview(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	review, err := h.performance.AcknowledgeReview(requestContext(c), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"review": review})
}
