package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/models"
	"github.com/talenthr/talenthr/pkg/crypto"
	apperrors "github.com/talenthr/talenthr/pkg/errors"
)

var (
	// ErrCompanyNameTaken signals a registration against an existing company name.
	ErrCompanyNameTaken = apperrors.New("COMPANY_NAME_TAKEN", "A company with this name already exists", http.StatusConflict)
	// ErrCompanyNotFound indicates the tenant does not exist.
	ErrCompanyNotFound = apperrors.New("COMPANY_NOT_FOUND", "Company not found", http.StatusNotFound)
	// ErrUserEmailTaken signals a registration or update against an existing account email.
	ErrUserEmailTaken = apperrors.New("USER_EMAIL_TAKEN", "A user with this email already exists", http.StatusConflict)
)

// CompanyService manages the tenant record and its settings.
type CompanyService struct {
	db *gorm.DB
}

// NewCompanyService constructs a CompanyService.
func NewCompanyService(db *gorm.DB) (*CompanyService, error) {
	if db == nil {
		return nil, errors.New("company service: db is required")
	}
	return &CompanyService{db: db}, nil
}

// RegisterCompanyInput bootstraps a tenant together with its first admin.
type RegisterCompanyInput struct {
	CompanyName string
	Email       string
	Password    string
	FirstName   string
	LastName    string
}

// Register creates the company and its first admin user in one transaction.
func (s *CompanyService) Register(ctx context.Context, input RegisterCompanyInput) (*models.Company, *models.User, error) {
	ctx = ensureContext(ctx)

	name := trimmed(input.CompanyName)
	email := normaliseEmail(input.Email)
	switch {
	case name == "":
		return nil, nil, apperrors.NewBadRequest("company name is required")
	case email == "":
		return nil, nil, apperrors.NewBadRequest("email is required")
	case trimmed(input.Password) == "":
		return nil, nil, apperrors.NewBadRequest("password is required")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("company service: hash password: %w", err)
	}

	settings, err := json.Marshal(models.DefaultCompanySettings())
	if err != nil {
		return nil, nil, fmt.Errorf("company service: encode settings: %w", err)
	}

	company := &models.Company{
		Name:     name,
		Slug:     Slugify(name),
		Status:   models.CompanyActive,
		Settings: datatypes.JSON(settings),
	}
	admin := &models.User{
		Email:     email,
		Password:  hashed,
		FirstName: trimmed(input.FirstName),
		LastName:  trimmed(input.LastName),
		Role:      models.RoleAdmin,
		Status:    models.UserActive,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(company).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrCompanyNameTaken
			}
			return err
		}

		admin.CompanyID = company.ID
		if err := tx.Create(admin).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrUserEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, nil, appErr
		}
		return nil, nil, fmt.Errorf("company service: register: %w", err)
	}

	return company, admin, nil
}

// Get loads the tenant record.
func (s *CompanyService) Get(ctx context.Context, companyID string) (*models.Company, error) {
	ctx = ensureContext(ctx)

	var company models.Company
	err := s.db.WithContext(ctx).First(&company, "id = ?", companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("company service: get: %w", err)
	}
	return &company, nil
}

// UpdateCompanyInput carries mutable tenant fields.
type UpdateCompanyInput struct {
	Name *string
}

// Update renames the tenant. The slug follows the new name.
func (s *CompanyService) Update(ctx context.Context, companyID string, input UpdateCompanyInput) (*models.Company, error) {
	ctx = ensureContext(ctx)

	company, err := s.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := trimmed(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("company name cannot be empty")
		}
		updates["name"] = name
		updates["slug"] = Slugify(name)
	}
	if len(updates) == 0 {
		return company, nil
	}

	if err := s.db.WithContext(ctx).Model(company).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrCompanyNameTaken
		}
		return nil, fmt.Errorf("company service: update: %w", err)
	}
	return company, nil
}

// Settings returns the decoded tenant settings.
func (s *CompanyService) Settings(ctx context.Context, companyID string) (models.CompanySettings, error) {
	company, err := s.Get(ctx, companyID)
	if err != nil {
		return models.CompanySettings{}, err
	}
	return company.DecodedSettings(), nil
}

// UpdateSettings merges the provided values over the stored settings.
func (s *CompanyService) UpdateSettings(ctx context.Context, companyID string, input models.CompanySettings) (models.CompanySettings, error) {
	ctx = ensureContext(ctx)

	company, err := s.Get(ctx, companyID)
	if err != nil {
		return models.CompanySettings{}, err
	}

	settings := company.DecodedSettings()
	if trimmed(input.Timezone) != "" {
		settings.Timezone = trimmed(input.Timezone)
	}
	if trimmed(input.WorkDayStart) != "" {
		settings.WorkDayStart = trimmed(input.WorkDayStart)
	}
	if trimmed(input.WorkDayEnd) != "" {
		settings.WorkDayEnd = trimmed(input.WorkDayEnd)
	}
	if trimmed(input.WeekStart) != "" {
		settings.WeekStart = strings.ToLower(trimmed(input.WeekStart))
	}

	payload, err := json.Marshal(settings)
	if err != nil {
		return models.CompanySettings{}, fmt.Errorf("company service: encode settings: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(company).
		Update("settings", datatypes.JSON(payload)).Error; err != nil {
		return models.CompanySettings{}, fmt.Errorf("company service: update settings: %w", err)
	}
	return settings, nil
}

// Suspend marks the tenant suspended; authentication rejects suspended tenants.
func (s *CompanyService) Suspend(ctx context.Context, companyID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.Company{}).
		Where("id = ?", companyID).
		Update("status", models.CompanySuspended)
	if result.Error != nil {
		return fmt.Errorf("company service: suspend: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

// Slugify lowercases a name and collapses runs of non-alphanumerics to single
// hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
