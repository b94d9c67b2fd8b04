package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/models"
	"github.com/talenthr/talenthr/pkg/crypto"
	apperrors "github.com/talenthr/talenthr/pkg/errors"
	"github.com/talenthr/talenthr/pkg/mail"
	"github.com/talenthr/talenthr/pkg/metrics"
)

const (
	defaultInvitationExpiry     = 72 * time.Hour
	defaultInvitationTokenBytes = 48
)

var (
	// ErrInvitationNotFound indicates no invitation matches the provided token or id.
	ErrInvitationNotFound = apperrors.New("INVITATION_NOT_FOUND", "Invitation not found", http.StatusNotFound)
	// ErrInvitationExpired indicates the invitation token has expired.
	ErrInvitationExpired = apperrors.New("INVITATION_EXPIRED", "Invitation has expired", http.StatusBadRequest)
	// ErrInvitationConsumed signals a terminal invitation (accepted or cancelled).
	ErrInvitationConsumed = apperrors.New("INVITATION_CONSUMED", "Invitation is no longer valid", http.StatusBadRequest)
	// ErrInvitationPendingExists enforces at most one pending invitation per (company, email).
	ErrInvitationPendingExists = apperrors.New("INVITATION_PENDING_EXISTS", "A pending invitation already exists for this email", http.StatusConflict)
	// ErrInvitationEmailInUse rejects invitations to addresses that already have an account.
	ErrInvitationEmailInUse = apperrors.New("INVITATION_EMAIL_IN_USE", "A user with this email already exists", http.StatusConflict)
)

// InvitationOption customises InvitationService behaviour.
type InvitationOption func(*InvitationService)

// WithInvitationBaseURL configures the base URL used to create invitation hyperlinks.
func WithInvitationBaseURL(url string) InvitationOption {
	return func(s *InvitationService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithInvitationExpiry overrides the invitation token lifetime.
func WithInvitationExpiry(d time.Duration) InvitationOption {
	return func(s *InvitationService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithInvitationClock injects a custom clock primarily for testing.
func WithInvitationClock(clock func() time.Time) InvitationOption {
	return func(s *InvitationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// InvitationService manages the single-use invitation token lifecycle:
// pending -> accepted | cancelled | expired, all terminal.
type InvitationService struct {
	db      *gorm.DB
	mailer  mail.Mailer
	baseURL string
	expiry  time.Duration
	now     func() time.Time
}

// NewInvitationService constructs an InvitationService with the provided dependencies.
func NewInvitationService(db *gorm.DB, mailer mail.Mailer, opts ...InvitationOption) (*InvitationService, error) {
	if db == nil {
		return nil, errors.New("invitation service: db is required")
	}

	service := &InvitationService{
		db:     db,
		mailer: mailer,
		expiry: defaultInvitationExpiry,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// CreateInvitationInput describes a new invitation request.
type CreateInvitationInput struct {
	CompanyID string
	Email     string
	Role      models.Role
	InvitedBy string
}

// Create issues a new invitation token scoped to a company and role, and
// optionally dispatches the invitation email.
func (s *InvitationService) Create(ctx context.Context, input CreateInvitationInput) (*models.Invitation, string, error) {
	ctx = ensureContext(ctx)

	email := normaliseEmail(input.Email)
	if email == "" {
		return nil, "", apperrors.NewBadRequest("email is required")
	}
	if !models.ValidRole(input.Role) {
		return nil, "", apperrors.NewBadRequest("unknown role")
	}

	var existingUsers int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&existingUsers).Error; err != nil {
		return nil, "", fmt.Errorf("invitation service: check existing user: %w", err)
	}
	if existingUsers > 0 {
		return nil, "", ErrInvitationEmailInUse
	}

	now := s.now()

	var pending int64
	if err := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("company_id = ? AND email = ? AND status = ? AND expires_at > ?",
			input.CompanyID, email, models.InvitationPending, now).
		Count(&pending).Error; err != nil {
		return nil, "", fmt.Errorf("invitation service: check pending: %w", err)
	}
	if pending > 0 {
		return nil, "", ErrInvitationPendingExists
	}

	rawToken, err := crypto.GenerateToken(defaultInvitationTokenBytes)
	if err != nil {
		return nil, "", fmt.Errorf("invitation service: generate token: %w", err)
	}

	invitation := &models.Invitation{
		CompanyID: input.CompanyID,
		Email:     email,
		Role:      input.Role,
		InvitedBy: trimmed(input.InvitedBy),
		TokenHash: invitationTokenHash(rawToken),
		Status:    models.InvitationPending,
		ExpiresAt: now.Add(s.expiry),
	}

	// Settled invitations for the same address are superseded by the new one;
	// removing them keeps the (company, email) unique index satisfied while a
	// concurrent pending insert still collides on it.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ? AND email = ? AND (status <> ? OR expires_at <= ?)",
			input.CompanyID, email, models.InvitationPending, now).
			Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		return tx.Create(invitation).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, "", ErrInvitationPendingExists
		}
		return nil, "", fmt.Errorf("invitation service: create invitation: %w", err)
	}

	metrics.InvitationEvents.WithLabelValues("created").Inc()

	if err := s.sendInvitationMail(ctx, email, rawToken); err != nil {
		return nil, "", err
	}

	return invitation, rawToken, nil
}

// List returns a company's invitations, newest first.
func (s *InvitationService) List(ctx context.Context, companyID string) ([]models.Invitation, error) {
	ctx = ensureContext(ctx)

	var invitations []models.Invitation
	if err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("invitation service: list: %w", err)
	}
	return invitations, nil
}

// Cancel transitions a pending invitation to the terminal cancelled state.
func (s *InvitationService) Cancel(ctx context.Context, companyID, id string) error {
	ctx = ensureContext(ctx)

	now := s.now()
	result := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ? AND company_id = ? AND status = ?", id, companyID, models.InvitationPending).
		Updates(map[string]any{
			"status":       models.InvitationCancelled,
			"cancelled_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("invitation service: cancel: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvitationNotFound
	}

	metrics.InvitationEvents.WithLabelValues("cancelled").Inc()
	return nil
}

// Resend rotates the token and expiry of a pending invitation and re-sends the email.
func (s *InvitationService) Resend(ctx context.Context, companyID, id string) (*models.Invitation, string, error) {
	ctx = ensureContext(ctx)

	var invitation models.Invitation
	err := s.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvitationNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("invitation service: find invitation: %w", err)
	}

	if invitation.Status != models.InvitationPending {
		return nil, "", ErrInvitationConsumed
	}

	rawToken, err := crypto.GenerateToken(defaultInvitationTokenBytes)
	if err != nil {
		return nil, "", fmt.Errorf("invitation service: generate token: %w", err)
	}

	now := s.now()
	updates := map[string]any{
		"token_hash": invitationTokenHash(rawToken),
		"expires_at": now.Add(s.expiry),
	}
	if err := s.db.WithContext(ctx).Model(&invitation).Updates(updates).Error; err != nil {
		return nil, "", fmt.Errorf("invitation service: rotate token: %w", err)
	}

	invitation.TokenHash = updates["token_hash"].(string)
	invitation.ExpiresAt = updates["expires_at"].(time.Time)

	if err := s.sendInvitationMail(ctx, invitation.Email, rawToken); err != nil {
		return nil, "", err
	}

	return &invitation, rawToken, nil
}

// Validate looks up an invitation by raw token. A pending invitation past its
// expiry lazily transitions to the terminal expired state on this read and is
// reported invalid from then on.
func (s *InvitationService) Validate(ctx context.Context, token string) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	token = trimmed(token)
	if token == "" {
		return nil, apperrors.NewBadRequest("token is required")
	}

	var invitation models.Invitation
	err := s.db.WithContext(ctx).
		Preload("Company").
		Where("token_hash = ?", invitationTokenHash(token)).
		First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invitation service: find invitation: %w", err)
	}

	now := s.now()

	switch invitation.Status {
	case models.InvitationAccepted, models.InvitationCancelled, models.InvitationExpired:
		return nil, ErrInvitationConsumed
	}

	if invitation.IsExpired(now) {
		if err := s.db.WithContext(ctx).
			Model(&invitation).
			Update("status", models.InvitationExpired).Error; err != nil {
			return nil, fmt.Errorf("invitation service: mark expired: %w", err)
		}
		metrics.InvitationEvents.WithLabelValues("expired").Inc()
		return nil, ErrInvitationExpired
	}

	return &invitation, nil
}

// AcceptInvitationInput carries the signup details submitted with the token.
type AcceptInvitationInput struct {
	Token     string
	Password  string
	FirstName string
	LastName  string
}

// Accept validates the token, creates the user under the invitation's company
// and role, and marks the invitation accepted, all in one transaction.
func (s *InvitationService) Accept(ctx context.Context, input AcceptInvitationInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	if trimmed(input.Password) == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	invitation, err := s.Validate(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("invitation service: hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		Email:     invitation.Email,
		Password:  hashed,
		FirstName: trimmed(input.FirstName),
		LastName:  trimmed(input.LastName),
		Role:      invitation.Role,
		Status:    models.UserActive,
		CompanyID: invitation.CompanyID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Invitation{}).
			Where("id = ? AND status = ?", invitation.ID, models.InvitationPending).
			Updates(map[string]any{
				"status":      models.InvitationAccepted,
				"accepted_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvitationConsumed
		}
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrInvitationEmailInUse
		}
		return nil, err
	}

	metrics.InvitationEvents.WithLabelValues("accepted").Inc()
	return user, nil
}

// SweepExpired bulk-marks pending invitations past their expiry. The lazy
// transition in Validate remains authoritative; this keeps listings tidy.
func (s *InvitationService) SweepExpired(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("status = ? AND expires_at < ?", models.InvitationPending, s.now()).
		Update("status", models.InvitationExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("invitation service: sweep expired: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *InvitationService) sendInvitationMail(ctx context.Context, email, token string) error {
	if s.mailer == nil {
		return nil
	}

	message := mail.Message{
		To:      []string{email},
		Subject: "You're invited to TalentHR",
		Body:    s.invitationBody(s.invitationLink(token)),
	}
	if err := s.mailer.Send(ctx, message); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		return fmt.Errorf("invitation service: send email: %w", err)
	}
	return nil
}

func (s *InvitationService) invitationLink(token string) string {
	if s.baseURL == "" {
		return token
	}
	return fmt.Sprintf("%s?token=%s", s.baseURL, token)
}

func (s *InvitationService) invitationBody(link string) string {
	return fmt.Sprintf("Hello,\n\nYou have been invited to join your team on TalentHR. Use the following link to finish setting up your account:\n%s\n\nIf you did not expect this email, you can ignore it.\n", link)
}

func invitationTokenHash(token string) string {
	checksum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(checksum[:])
}
