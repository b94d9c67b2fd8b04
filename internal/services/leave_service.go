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
	// ErrLeaveTypeNotFound indicates an unknown or foreign leave type.
	ErrLeaveTypeNotFound = apperrors.New("LEAVE_TYPE_NOT_FOUND", "Leave type not found", http.StatusNotFound)
	// ErrLeaveTypeCodeTaken enforces unique codes per company.
	ErrLeaveTypeCodeTaken = apperrors.New("LEAVE_TYPE_CODE_TAKEN", "A leave type with this code already exists", http.StatusConflict)
	// ErrLeaveRequestNotFound indicates no request within the actor's scope.
	ErrLeaveRequestNotFound = apperrors.New("LEAVE_REQUEST_NOT_FOUND", "Leave request not found", http.StatusNotFound)
	// ErrLeaveRequestNotPending rejects review actions on settled requests.
	ErrLeaveRequestNotPending = apperrors.New("LEAVE_REQUEST_NOT_PENDING", "Leave request is no longer pending", http.StatusBadRequest)
	// ErrLeaveBalanceExceeded rejects requests beyond the available balance.
	ErrLeaveBalanceExceeded = apperrors.New("LEAVE_BALANCE_EXCEEDED", "Insufficient leave balance", http.StatusBadRequest)
	// ErrLeaveRangeInvalid rejects malformed or inverted date ranges.
	ErrLeaveRangeInvalid = apperrors.New("LEAVE_RANGE_INVALID", "Invalid leave date range", http.StatusBadRequest)
)

// LeaveOption customises LeaveService behaviour.
type LeaveOption func(*LeaveService)

// WithLeaveClock injects a custom clock primarily for testing.
func WithLeaveClock(clock func() time.Time) LeaveOption {
	return func(s *LeaveService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// LeaveService manages leave types, requests and per-year balances. Balance
// counters move with request state: creation adds to Pending, approval shifts
// Pending into Used, rejection and cancellation release Pending.
type LeaveService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLeaveService constructs a LeaveService.
func NewLeaveService(db *gorm.DB, opts ...LeaveOption) (*LeaveService, error) {
	if db == nil {
		return nil, errors.New("leave service: db is required")
	}

	service := &LeaveService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CreateLeaveTypeInput describes a new leave category.
type CreateLeaveTypeInput struct {
	Name             string
	Code             string
	QuotaDays        float64
	CarryForward     bool
	MaxCarryDays     float64
	RequiresApproval bool
}

// CreateType adds a leave category to the company.
func (s *LeaveService) CreateType(ctx context.Context, actor Actor, input CreateLeaveTypeInput) (*models.LeaveType, error) {
	ctx = ensureContext(ctx)

	name := trimmed(input.Name)
	code := trimmed(input.Code)
	switch {
	case name == "":
		return nil, apperrors.NewBadRequest("name is required")
	case code == "":
		return nil, apperrors.NewBadRequest("code is required")
	case input.QuotaDays < 0:
		return nil, apperrors.NewBadRequest("quota days cannot be negative")
	}

	leaveType := &models.LeaveType{
		CompanyID:        actor.CompanyID,
		Name:             name,
		Code:             code,
		QuotaDays:        input.QuotaDays,
		CarryForward:     input.CarryForward,
		MaxCarryDays:     input.MaxCarryDays,
		RequiresApproval: input.RequiresApproval,
		Status:           "active",
	}

	if err := s.db.WithContext(ctx).Create(leaveType).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrLeaveTypeCodeTaken
		}
		return nil, fmt.Errorf("leave service: create type: %w", err)
	}
	return leaveType, nil
}

// ListTypes returns the company's leave categories.
func (s *LeaveService) ListTypes(ctx context.Context, actor Actor) ([]models.LeaveType, error) {
	ctx = ensureContext(ctx)

	var types []models.LeaveType
	if err := s.db.WithContext(ctx).
		Where("company_id = ?", actor.CompanyID).
		Order("name ASC").
		Find(&types).Error; err != nil {
		return nil, fmt.Errorf("leave service: list types: %w", err)
	}
	return types, nil
}

// UpdateLeaveTypeInput carries mutable leave type fields.
type UpdateLeaveTypeInput struct {
	Name             *string
	QuotaDays        *float64
	CarryForward     *bool
	MaxCarryDays     *float64
	RequiresApproval *bool
	Status           *string
}

// UpdateType modifies a company leave category.
func (s *LeaveService) UpdateType(ctx context.Context, actor Actor, id string, input UpdateLeaveTypeInput) (*models.LeaveType, error) {
	ctx = ensureContext(ctx)

	leaveType, err := s.findType(ctx, actor.CompanyID, id)
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
	if input.QuotaDays != nil {
		if *input.QuotaDays < 0 {
			return nil, apperrors.NewBadRequest("quota days cannot be negative")
		}
		updates["quota_days"] = *input.QuotaDays
	}
	if input.CarryForward != nil {
		updates["carry_forward"] = *input.CarryForward
	}
	if input.MaxCarryDays != nil {
		updates["max_carry_days"] = *input.MaxCarryDays
	}
	if input.RequiresApproval != nil {
		updates["requires_approval"] = *input.RequiresApproval
	}
	if input.Status != nil {
		updates["status"] = trimmed(*input.Status)
	}
	if len(updates) == 0 {
		return leaveType, nil
	}

	if err := s.db.WithContext(ctx).Model(leaveType).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("leave service: update type: %w", err)
	}
	return leaveType, nil
}

// DeleteType retires a leave category. The row is kept so historical requests
// and balances stay resolvable; retired types stop provisioning balances.
func (s *LeaveService) DeleteType(ctx context.Context, actor Actor, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.LeaveType{}).
		Where("id = ? AND company_id = ?", id, actor.CompanyID).
		Update("status", "archived")
	if result.Error != nil {
		return fmt.Errorf("leave service: delete type: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLeaveTypeNotFound
	}
	return nil
}

// CreateLeaveRequestInput describes a new leave request.
type CreateLeaveRequestInput struct {
	LeaveTypeID string
	StartDate   string
	EndDate     string
	Reason      string
}

// CreateRequest validates the range, computes business days, checks the
// available balance and books the days as Pending, all in one transaction.
func (s *LeaveService) CreateRequest(ctx context.Context, actor Actor, input CreateLeaveRequestInput) (*models.LeaveRequest, error) {
	ctx = ensureContext(ctx)

	start, err := time.Parse(attendanceDateLayout, trimmed(input.StartDate))
	if err != nil {
		return nil, ErrLeaveRangeInvalid
	}
	end, err := time.Parse(attendanceDateLayout, trimmed(input.EndDate))
	if err != nil {
		return nil, ErrLeaveRangeInvalid
	}
	if end.Before(start) {
		return nil, ErrLeaveRangeInvalid
	}

	days := BusinessDays(start, end)
	if days <= 0 {
		return nil, ErrLeaveRangeInvalid
	}

	leaveType, err := s.findType(ctx, actor.CompanyID, input.LeaveTypeID)
	if err != nil {
		return nil, err
	}

	status := models.LeavePending
	if !leaveType.RequiresApproval {
		status = models.LeaveApproved
	}

	request := &models.LeaveRequest{
		CompanyID:   actor.CompanyID,
		UserID:      actor.UserID,
		LeaveTypeID: leaveType.ID,
		StartDate:   start.Format(attendanceDateLayout),
		EndDate:     end.Format(attendanceDateLayout),
		Days:        days,
		Reason:      trimmed(input.Reason),
		Status:      status,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balance, err := s.balanceForUpdate(tx, actor.CompanyID, actor.UserID, leaveType, start.Year())
		if err != nil {
			return err
		}
		if balance.Available() < days {
			return ErrLeaveBalanceExceeded
		}

		column := "pending"
		if status == models.LeaveApproved {
			column = "used"
		}
		if err := tx.Model(balance).
			Update(column, gorm.Expr(column+" + ?", days)).Error; err != nil {
			return err
		}

		return tx.Create(request).Error
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("leave service: create request: %w", err)
	}

	return request, nil
}

// ListLeaveInput filters leave request listings.
type ListLeaveInput struct {
	Status   models.LeaveRequestStatus
	UserID   string
	Page     int
	PageSize int
}

// ListLeaveResult carries one page of requests plus the unpaginated total.
type ListLeaveResult struct {
	Requests []models.LeaveRequest
	Total    int64
	Page     int
	PageSize int
}

// ListRequests returns leave requests visible to the actor, newest first.
func (s *LeaveService) ListRequests(ctx context.Context, actor Actor, input ListLeaveInput) (*ListLeaveResult, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.LeaveRequest{})
	query = scopeByRole(s.db, query, actor, "user_id")

	if input.Status != "" {
		query = query.Where("status = ?", input.Status)
	}
	if id := trimmed(input.UserID); id != "" {
		query = query.Where("user_id = ?", id)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("leave service: count: %w", err)
	}

	page, pageSize := normalisePage(input.Page, input.PageSize)

	var requests []models.LeaveRequest
	if err := query.
		Preload("LeaveType").
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("leave service: list: %w", err)
	}

	return &ListLeaveResult{Requests: requests, Total: total, Page: page, PageSize: pageSize}, nil
}

// Approve settles a pending request and shifts its days from Pending to Used.
func (s *LeaveService) Approve(ctx context.Context, actor Actor, id, note string) (*models.LeaveRequest, error) {
	return s.review(ctx, actor, id, note, models.LeaveApproved)
}

// Reject settles a pending request and releases its Pending days.
func (s *LeaveService) Reject(ctx context.Context, actor Actor, id, note string) (*models.LeaveRequest, error) {
	return s.review(ctx, actor, id, note, models.LeaveRejected)
}

// Cancel lets the requester withdraw a pending request, releasing its days.
func (s *LeaveService) Cancel(ctx context.Context, actor Actor, id string) (*models.LeaveRequest, error) {
	ctx = ensureContext(ctx)

	var request models.LeaveRequest
	err := s.db.WithContext(ctx).
		Where("id = ? AND company_id = ? AND user_id = ?", id, actor.CompanyID, actor.UserID).
		First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLeaveRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("leave service: find request: %w", err)
	}
	if request.Status != models.LeavePending {
		return nil, ErrLeaveRequestNotPending
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.settle(tx, &request, models.LeaveCancelled, nil, ""); err != nil {
			return err
		}
		return s.adjustBalance(tx, &request, "pending", -request.Days)
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("leave service: cancel: %w", err)
	}

	request.Status = models.LeaveCancelled
	return &request, nil
}

// Balances returns the actor's balances for the given year.
func (s *LeaveService) Balances(ctx context.Context, actor Actor, userID string, year int) ([]models.LeaveBalance, error) {
	ctx = ensureContext(ctx)

	if userID == "" {
		userID = actor.UserID
	}
	if userID != actor.UserID && !actor.CanManagePeople() {
		return nil, apperrors.ErrForbidden
	}
	if year == 0 {
		year = s.now().Year()
	}

	// Provision missing balances lazily from active type quotas.
	types, err := s.ListTypes(ctx, actor)
	if err != nil {
		return nil, err
	}
	for i := range types {
		if types[i].Status != "active" {
			continue
		}
		if _, err := s.ensureBalance(s.db.WithContext(ctx), actor.CompanyID, userID, &types[i], year); err != nil {
			return nil, fmt.Errorf("leave service: provision balance: %w", err)
		}
	}

	var balances []models.LeaveBalance
	if err := s.db.WithContext(ctx).
		Preload("LeaveType").
		Where("company_id = ? AND user_id = ? AND year = ?", actor.CompanyID, userID, year).
		Find(&balances).Error; err != nil {
		return nil, fmt.Errorf("leave service: balances: %w", err)
	}
	return balances, nil
}

func (s *LeaveService) review(ctx context.Context, actor Actor, id, note string, verdict models.LeaveRequestStatus) (*models.LeaveRequest, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Model(&models.LeaveRequest{}).
		Where("id = ?", id)
	query = scopeByRole(s.db, query, actor, "user_id")

	var request models.LeaveRequest
	err := query.First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLeaveRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("leave service: find request: %w", err)
	}

	// Reviewers act on others' requests; own requests go through Cancel.
	if request.UserID == actor.UserID {
		return nil, apperrors.ErrForbidden
	}
	if request.Status != models.LeavePending {
		return nil, ErrLeaveRequestNotPending
	}

	reviewer := actor.UserID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.settle(tx, &request, verdict, &reviewer, note); err != nil {
			return err
		}
		if verdict == models.LeaveApproved {
			if err := s.adjustBalance(tx, &request, "pending", -request.Days); err != nil {
				return err
			}
			return s.adjustBalance(tx, &request, "used", request.Days)
		}
		return s.adjustBalance(tx, &request, "pending", -request.Days)
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("leave service: review: %w", err)
	}

	request.Status = verdict
	request.ReviewerID = &reviewer
	return &request, nil
}

// settle flips a pending request into a terminal state, guarding against a
// concurrent reviewer with the status predicate.
func (s *LeaveService) settle(tx *gorm.DB, request *models.LeaveRequest, verdict models.LeaveRequestStatus, reviewer *string, note string) error {
	updates := map[string]any{
		"status":      verdict,
		"reviewed_at": s.now(),
		"review_note": trimmed(note),
	}
	if reviewer != nil {
		updates["reviewer_id"] = *reviewer
	}

	result := tx.Model(&models.LeaveRequest{}).
		Where("id = ? AND status = ?", request.ID, models.LeavePending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLeaveRequestNotPending
	}
	return nil
}

func (s *LeaveService) adjustBalance(tx *gorm.DB, request *models.LeaveRequest, column string, delta float64) error {
	start, err := time.Parse(attendanceDateLayout, request.StartDate)
	if err != nil {
		return fmt.Errorf("parse start date: %w", err)
	}

	return tx.Model(&models.LeaveBalance{}).
		Where("user_id = ? AND leave_type_id = ? AND year = ?",
			request.UserID, request.LeaveTypeID, start.Year()).
		Update(column, gorm.Expr(column+" + ?", delta)).Error
}

func (s *LeaveService) balanceForUpdate(tx *gorm.DB, companyID, userID string, leaveType *models.LeaveType, year int) (*models.LeaveBalance, error) {
	return s.ensureBalance(tx, companyID, userID, leaveType, year)
}

// ensureBalance loads or provisions the per-year balance. Allocation is the
// type quota plus capped carry-forward from last year's remainder.
func (s *LeaveService) ensureBalance(tx *gorm.DB, companyID, userID string, leaveType *models.LeaveType, year int) (*models.LeaveBalance, error) {
	var balance models.LeaveBalance
	err := tx.Where("user_id = ? AND leave_type_id = ? AND year = ?", userID, leaveType.ID, year).
		First(&balance).Error
	if err == nil {
		return &balance, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	allocated := leaveType.QuotaDays
	if leaveType.CarryForward {
		var previous models.LeaveBalance
		err := tx.Where("user_id = ? AND leave_type_id = ? AND year = ?", userID, leaveType.ID, year-1).
			First(&previous).Error
		if err == nil {
			carry := previous.Available()
			if carry > leaveType.MaxCarryDays {
				carry = leaveType.MaxCarryDays
			}
			if carry > 0 {
				allocated += carry
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	balance = models.LeaveBalance{
		CompanyID:   companyID,
		UserID:      userID,
		LeaveTypeID: leaveType.ID,
		Year:        year,
		Allocated:   allocated,
	}
	if err := tx.Create(&balance).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Concurrent provisioning; reload the winner.
			if err := tx.Where("user_id = ? AND leave_type_id = ? AND year = ?", userID, leaveType.ID, year).
				First(&balance).Error; err != nil {
				return nil, err
			}
			return &balance, nil
		}
		return nil, err
	}
	return &balance, nil
}

func (s *LeaveService) findType(ctx context.Context, companyID, id string) (*models.LeaveType, error) {
	var leaveType models.LeaveType
	err := s.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&leaveType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLeaveTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("leave service: find type: %w", err)
	}
	return &leaveType, nil
}

// BusinessDays counts Monday through Friday days in the inclusive range.
func BusinessDays(start, end time.Time) float64 {
	if end.Before(start) {
		return 0
	}

	days := 0.0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		default:
			days++
		}
	}
	return days
}
