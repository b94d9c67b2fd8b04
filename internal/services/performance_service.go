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
	// ErrGoalNotFound indicates no goal within the actor's scope.
	ErrGoalNotFound = apperrors.New("GOAL_NOT_FOUND", "Goal not found", http.StatusNotFound)
	// ErrReviewNotFound indicates no review within the actor's scope.
	ErrReviewNotFound = apperrors.New("REVIEW_NOT_FOUND", "Performance review not found", http.StatusNotFound)
	// ErrReviewStateInvalid rejects lifecycle actions taken out of order.
	ErrReviewStateInvalid = apperrors.New("REVIEW_STATE_INVALID", "Review is not in the required state", http.StatusBadRequest)
	// ErrRatingInvalid bounds ratings to 1 through 5.
	ErrRatingInvalid = apperrors.New("RATING_INVALID", "Rating must be between 1 and 5", http.StatusBadRequest)
)

// PerformanceOption customises PerformanceService behaviour.
type PerformanceOption func(*PerformanceService)

// WithPerformanceClock injects a custom clock primarily for testing.
func WithPerformanceClock(clock func() time.Time) PerformanceOption {
	return func(s *PerformanceService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// PerformanceService manages goals and the review lifecycle
// draft -> submitted -> acknowledged.
type PerformanceService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPerformanceService constructs a PerformanceService.
func NewPerformanceService(db *gorm.DB, opts ...PerformanceOption) (*PerformanceService, error) {
	if db == nil {
		return nil, errors.New("performance service: db is required")
	}

	service := &PerformanceService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CreateGoalInput describes a new goal. UserID defaults to the actor; setting
// it for someone else requires management visibility over that user.
type CreateGoalInput struct {
	UserID      string
	Title       string
	Description string
	DueDate     *time.Time
}

// CreateGoal records a goal with status derived from its initial progress.
func (s *PerformanceService) CreateGoal(ctx context.Context, actor Actor, input CreateGoalInput) (*models.Goal, error) {
	ctx = ensureContext(ctx)

	title := trimmed(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}

	userID := trimmed(input.UserID)
	if userID == "" {
		userID = actor.UserID
	}
	if userID != actor.UserID {
		if err := s.requireVisible(ctx, actor, userID); err != nil {
			return nil, err
		}
	}

	goal := &models.Goal{
		CompanyID:   actor.CompanyID,
		UserID:      userID,
		Title:       title,
		Description: trimmed(input.Description),
		Status:      models.GoalNotStarted,
		DueDate:     input.DueDate,
	}

	if err := s.db.WithContext(ctx).Create(goal).Error; err != nil {
		return nil, fmt.Errorf("performance service: create goal: %w", err)
	}
	return goal, nil
}

// ListGoals returns goals visible to the actor, soonest due first.
func (s *PerformanceService) ListGoals(ctx context.Context, actor Actor, userID string) ([]models.Goal, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Goal{})
	query = scopeByRole(s.db, query, actor, "user_id")
	if id := trimmed(userID); id != "" {
		query = query.Where("user_id = ?", id)
	}

	var goals []models.Goal
	if err := query.
		Order("due_date ASC, created_at ASC").
		Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("performance service: list goals: %w", err)
	}
	return goals, nil
}

// UpdateGoalInput carries mutable goal fields.
type UpdateGoalInput struct {
	Title       *string
	Description *string
	Progress    *int
	DueDate     *time.Time
}

// UpdateGoal modifies a goal. Status always follows progress and cannot be
// set directly.
func (s *PerformanceService) UpdateGoal(ctx context.Context, actor Actor, id string, input UpdateGoalInput) (*models.Goal, error) {
	ctx = ensureContext(ctx)

	goal, err := s.findGoal(ctx, actor, id)
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
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}
	if input.Progress != nil {
		progress := *input.Progress
		if progress < 0 || progress > 100 {
			return nil, apperrors.NewBadRequest("progress must be between 0 and 100")
		}
		updates["progress"] = progress
		updates["status"] = models.GoalStatusFor(progress)
	}
	if len(updates) == 0 {
		return goal, nil
	}

	if err := s.db.WithContext(ctx).Model(goal).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("performance service: update goal: %w", err)
	}
	if input.Progress != nil {
		goal.Progress = *input.Progress
		goal.Status = models.GoalStatusFor(*input.Progress)
	}
	return goal, nil
}

// DeleteGoal removes a goal within the actor's scope.
func (s *PerformanceService) DeleteGoal(ctx context.Context, actor Actor, id string) error {
	ctx = ensureContext(ctx)

	goal, err := s.findGoal(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(goal).Error; err != nil {
		return fmt.Errorf("performance service: delete goal: %w", err)
	}
	return nil
}

// CreateReviewInput opens a draft review of an employee for a period.
type CreateReviewInput struct {
	EmployeeID   string
	Period       string
	Rating       int
	Strengths    string
	Improvements string
}

// CreateReview opens a draft review. The actor becomes the reviewer and must
// have management visibility over the employee.
func (s *PerformanceService) CreateReview(ctx context.Context, actor Actor, input CreateReviewInput) (*models.PerformanceReview, error) {
	ctx = ensureContext(ctx)

	employeeID := trimmed(input.EmployeeID)
	period := trimmed(input.Period)
	switch {
	case employeeID == "":
		return nil, apperrors.NewBadRequest("employee id is required")
	case period == "":
		return nil, apperrors.NewBadRequest("period is required")
	case employeeID == actor.UserID:
		return nil, apperrors.NewBadRequest("cannot review yourself")
	}
	if input.Rating != 0 && (input.Rating < 1 || input.Rating > 5) {
		return nil, ErrRatingInvalid
	}

	if err := s.requireVisible(ctx, actor, employeeID); err != nil {
		return nil, err
	}

	review := &models.PerformanceReview{
		CompanyID:    actor.CompanyID,
		EmployeeID:   employeeID,
		ReviewerID:   actor.UserID,
		Period:       period,
		Rating:       input.Rating,
		Strengths:    trimmed(input.Strengths),
		Improvements: trimmed(input.Improvements),
		Status:       models.ReviewDraft,
	}

	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, fmt.Errorf("performance service: create review: %w", err)
	}
	return review, nil
}

// ListReviews returns reviews the actor can see: their own as employee or
// reviewer, plus their scope as a manager or HR.
func (s *PerformanceService) ListReviews(ctx context.Context, actor Actor, employeeID string) ([]models.PerformanceReview, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Model(&models.PerformanceReview{}).
		Where("company_id = ?", actor.CompanyID)
	switch {
	case actor.CanManagePeople():
		// whole company
	case actor.IsManager():
		reports := s.db.Model(&models.User{}).
			Select("id").
			Where("manager_id = ?", actor.UserID)
		query = query.Where("employee_id IN (?) OR employee_id = ? OR reviewer_id = ?",
			reports, actor.UserID, actor.UserID)
	default:
		query = query.Where("employee_id = ? OR reviewer_id = ?", actor.UserID, actor.UserID)
	}
	if id := trimmed(employeeID); id != "" {
		query = query.Where("employee_id = ?", id)
	}

	var reviews []models.PerformanceReview
	if err := query.
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("performance service: list reviews: %w", err)
	}
	return reviews, nil
}

// UpdateReviewInput carries the fields editable while a review is a draft.
type UpdateReviewInput struct {
	Rating       *int
	Strengths    *string
	Improvements *string
}

// UpdateReview edits a draft. Only the reviewer may edit, and only before
// submission.
func (s *PerformanceService) UpdateReview(ctx context.Context, actor Actor, id string, input UpdateReviewInput) (*models.PerformanceReview, error) {
	ctx = ensureContext(ctx)

	review, err := s.findReview(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if review.ReviewerID != actor.UserID {
		return nil, apperrors.ErrForbidden
	}
	if review.Status != models.ReviewDraft {
		return nil, ErrReviewStateInvalid
	}

	updates := map[string]any{}
	if input.Rating != nil {
		if *input.Rating < 1 || *input.Rating > 5 {
			return nil, ErrRatingInvalid
		}
		updates["rating"] = *input.Rating
	}
	if input.Strengths != nil {
		updates["strengths"] = trimmed(*input.Strengths)
	}
	if input.Improvements != nil {
		updates["improvements"] = trimmed(*input.Improvements)
	}
	if len(updates) == 0 {
		return review, nil
	}

	if err := s.db.WithContext(ctx).Model(review).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("performance service: update review: %w", err)
	}
	return review, nil
}

// SubmitReview moves a draft to submitted. A rating is required at this point.
func (s *PerformanceService) SubmitReview(ctx context.Context, actor Actor, id string) (*models.PerformanceReview, error) {
	ctx = ensureContext(ctx)

	review, err := s.findReview(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if review.ReviewerID != actor.UserID {
		return nil, apperrors.ErrForbidden
	}
	if review.Status != models.ReviewDraft {
		return nil, ErrReviewStateInvalid
	}
	if review.Rating < 1 || review.Rating > 5 {
		return nil, ErrRatingInvalid
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(review).Updates(map[string]any{
		"status":       models.ReviewSubmitted,
		"submitted_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("performance service: submit review: %w", err)
	}

	review.Status = models.ReviewSubmitted
	review.SubmittedAt = &now
	return review, nil
}

// AcknowledgeReview lets the employee confirm they have read a submitted review.
func (s *PerformanceService) AcknowledgeReview(ctx context.Context, actor Actor, id string) (*models.PerformanceReview, error) {
	ctx = ensureContext(ctx)

	review, err := s.findReview(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if review.EmployeeID != actor.UserID {
		return nil, apperrors.ErrForbidden
	}
	if review.Status != models.ReviewSubmitted {
		return nil, ErrReviewStateInvalid
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(review).Updates(map[string]any{
		"status":          models.ReviewAcknowledged,
		"acknowledged_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("performance service: acknowledge review: %w", err)
	}

	review.Status = models.ReviewAcknowledged
	review.AcknowledgedAt = &now
	return review, nil
}

func (s *PerformanceService) findGoal(ctx context.Context, actor Actor, id string) (*models.Goal, error) {
	query := s.db.WithContext(ctx).Model(&models.Goal{}).Where("id = ?", id)
	query = scopeByRole(s.db, query, actor, "user_id")

	var goal models.Goal
	err := query.First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("performance service: find goal: %w", err)
	}
	return &goal, nil
}

func (s *PerformanceService) findReview(ctx context.Context, companyID, id string) (*models.PerformanceReview, error) {
	var review models.PerformanceReview
	err := s.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("performance service: find review: %w", err)
	}
	return &review, nil
}

// requireVisible checks the target user is inside the actor's management scope.
func (s *PerformanceService) requireVisible(ctx context.Context, actor Actor, userID string) error {
	query := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID)
	query = scopeByRole(s.db, query, actor, "id")

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("performance service: check visibility: %w", err)
	}
	if count == 0 {
		return apperrors.ErrForbidden
	}
	return nil
}
