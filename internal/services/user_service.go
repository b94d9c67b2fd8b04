package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/models"
	"github.com/talenthr/talenthr/pkg/crypto"
	apperrors "github.com/talenthr/talenthr/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var (
	// ErrUserNotFound indicates the user does not exist within the actor's scope.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrPasswordMismatch is returned when the current password check fails.
	ErrPasswordMismatch = apperrors.New("PASSWORD_MISMATCH", "Current password is incorrect", http.StatusBadRequest)
	// ErrManagerInvalid rejects manager assignments outside the company or to self.
	ErrManagerInvalid = apperrors.New("MANAGER_INVALID", "Manager must be an active user in the same company", http.StatusBadRequest)
)

// SessionRevoker invalidates all of a user's sessions, typically on
// deactivation or password change.
type SessionRevoker interface {
	RevokeUserSessions(ctx context.Context, userID string) error
}

// UserService manages company-scoped accounts.
type UserService struct {
	db       *gorm.DB
	sessions SessionRevoker
}

// NewUserService constructs a UserService. The revoker is optional.
func NewUserService(db *gorm.DB, sessions SessionRevoker) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db, sessions: sessions}, nil
}

// ListUsersInput filters and paginates company user listings.
type ListUsersInput struct {
	Role       models.Role
	Status     models.UserStatus
	Department string
	Search     string
	Page       int
	PageSize   int
}

// ListUsersResult carries one page of users plus the unpaginated total.
type ListUsersResult struct {
	Users    []models.User
	Total    int64
	Page     int
	PageSize int
}

// List returns users visible to the actor: admins and HR see the company,
// managers see their reports plus themselves, everyone else sees themselves.
func (s *UserService) List(ctx context.Context, actor Actor, input ListUsersInput) (*ListUsersResult, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.User{})
	query = scopeByRole(s.db, query, actor, "id")

	if input.Role != "" {
		query = query.Where("role = ?", input.Role)
	}
	if input.Status != "" {
		query = query.Where("status = ?", input.Status)
	}
	if dep := trimmed(input.Department); dep != "" {
		query = query.Where("department = ?", dep)
	}
	if search := trimmed(input.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("user service: count: %w", err)
	}

	page, pageSize := normalisePage(input.Page, input.PageSize)

	var users []models.User
	if err := query.
		Order("created_at ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user service: list: %w", err)
	}

	return &ListUsersResult{Users: users, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get loads one user within the actor's visibility scope.
func (s *UserService) Get(ctx context.Context, actor Actor, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id)
	query = scopeByRole(s.db, query, actor, "id")

	var user models.User
	err := query.First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get: %w", err)
	}
	return &user, nil
}

// CreateUserInput describes a directly provisioned account.
type CreateUserInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	JobTitle   string
	Department string
	Role       models.Role
	ManagerID  *string
}

// Create provisions a user inside the actor's company. Invitation-based signup
// is the usual path; this serves direct provisioning by admins and HR.
func (s *UserService) Create(ctx context.Context, actor Actor, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := normaliseEmail(input.Email)
	switch {
	case email == "":
		return nil, apperrors.NewBadRequest("email is required")
	case trimmed(input.Password) == "":
		return nil, apperrors.NewBadRequest("password is required")
	case !models.ValidRole(input.Role):
		return nil, apperrors.NewBadRequest("unknown role")
	}

	if input.ManagerID != nil {
		if err := s.validateManager(ctx, actor.CompanyID, *input.ManagerID, ""); err != nil {
			return nil, err
		}
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Email:      email,
		Password:   hashed,
		FirstName:  trimmed(input.FirstName),
		LastName:   trimmed(input.LastName),
		JobTitle:   trimmed(input.JobTitle),
		Department: trimmed(input.Department),
		Role:       input.Role,
		Status:     models.UserActive,
		CompanyID:  actor.CompanyID,
		ManagerID:  input.ManagerID,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrUserEmailTaken
		}
		return nil, fmt.Errorf("user service: create: %w", err)
	}
	return user, nil
}

// UpdateUserInput carries the fields an admin or HR manager may change.
type UpdateUserInput struct {
	FirstName    *string
	LastName     *string
	JobTitle     *string
	Department   *string
	ManagerID    *string
	ClearManager bool
}

// Update modifies a company user's record.
func (s *UserService) Update(ctx context.Context, actor Actor, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.findInCompany(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FirstName != nil {
		updates["first_name"] = trimmed(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = trimmed(*input.LastName)
	}
	if input.JobTitle != nil {
		updates["job_title"] = trimmed(*input.JobTitle)
	}
	if input.Department != nil {
		updates["department"] = trimmed(*input.Department)
	}
	switch {
	case input.ClearManager:
		updates["manager_id"] = nil
	case input.ManagerID != nil:
		if err := s.validateManager(ctx, actor.CompanyID, *input.ManagerID, user.ID); err != nil {
			return nil, err
		}
		updates["manager_id"] = *input.ManagerID
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("user service: update: %w", err)
	}
	return user, nil
}

// UpdateProfileInput carries the fields users may change on themselves.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	JobTitle  *string
}

// UpdateProfile lets a user edit their own record.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get: %w", err)
	}

	updates := map[string]any{}
	if input.FirstName != nil {
		updates["first_name"] = trimmed(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = trimmed(*input.LastName)
	}
	if input.JobTitle != nil {
		updates["job_title"] = trimmed(*input.JobTitle)
	}
	if len(updates) == 0 {
		return &user, nil
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("user service: update profile: %w", err)
	}
	return &user, nil
}

// SetRole changes a user's role within the actor's company.
func (s *UserService) SetRole(ctx context.Context, actor Actor, id string, role models.Role) (*models.User, error) {
	ctx = ensureContext(ctx)

	if !models.ValidRole(role) {
		return nil, apperrors.NewBadRequest("unknown role")
	}

	user, err := s.findInCompany(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("user service: set role: %w", err)
	}
	return user, nil
}

// Activate restores a deactivated account.
func (s *UserService) Activate(ctx context.Context, actor Actor, id string) error {
	return s.setStatus(ctx, actor, id, models.UserActive)
}

// Deactivate disables an account and revokes its sessions. Accounts are never
// hard-deleted so historical attendance and reviews keep their references.
func (s *UserService) Deactivate(ctx context.Context, actor Actor, id string) error {
	if err := s.setStatus(ctx, actor, id, models.UserInactive); err != nil {
		return err
	}
	if s.sessions != nil {
		if err := s.sessions.RevokeUserSessions(ctx, id); err != nil {
			return fmt.Errorf("user service: revoke sessions: %w", err)
		}
	}
	return nil
}

// ChangePassword verifies the current password before storing a new hash, then
// revokes every session so stolen cookies stop working.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	ctx = ensureContext(ctx)

	if trimmed(next) == "" {
		return apperrors.NewBadRequest("new password is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("user service: get: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, current) {
		return ErrPasswordMismatch
	}

	return s.storePassword(ctx, &user, next)
}

// ResetPassword stores a new password hash without the current-password check.
// Callers must have verified ownership first, e.g. through a password reset OTP.
func (s *UserService) ResetPassword(ctx context.Context, email, next string) error {
	ctx = ensureContext(ctx)

	if trimmed(next) == "" {
		return apperrors.NewBadRequest("new password is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", normaliseEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("user service: get: %w", err)
	}

	return s.storePassword(ctx, &user, next)
}

func (s *UserService) storePassword(ctx context.Context, user *models.User, next string) error {
	hashed, err := crypto.HashPassword(next)
	if err != nil {
		return fmt.Errorf("user service: hash password: %w", err)
	}

	updates := map[string]any{
		"password":        hashed,
		"failed_attempts": 0,
		"locked_until":    nil,
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return fmt.Errorf("user service: store password: %w", err)
	}

	if s.sessions != nil {
		if err := s.sessions.RevokeUserSessions(ctx, user.ID); err != nil {
			return fmt.Errorf("user service: revoke sessions: %w", err)
		}
	}
	return nil
}

// RecordLogin stamps the last successful login metadata.
func (s *UserService) RecordLogin(ctx context.Context, userID, ip string, at time.Time) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"last_login_at": at,
			"last_login_ip": trimmed(ip),
		}).Error
}

func (s *UserService) setStatus(ctx context.Context, actor Actor, id string, status models.UserStatus) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND company_id = ?", id, actor.CompanyID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("user service: set status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) findInCompany(ctx context.Context, companyID, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get: %w", err)
	}
	return &user, nil
}

func (s *UserService) validateManager(ctx context.Context, companyID, managerID, selfID string) error {
	if managerID == "" || managerID == selfID {
		return ErrManagerInvalid
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND company_id = ? AND status = ?", managerID, companyID, models.UserActive).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("user service: validate manager: %w", err)
	}
	if count == 0 {
		return ErrManagerInvalid
	}
	return nil
}

func normalisePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize < 1:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	return page, pageSize
}
