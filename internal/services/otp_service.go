package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/models"
	"github.com/talenthr/talenthr/pkg/crypto"
	apperrors "github.com/talenthr/talenthr/pkg/errors"
	"github.com/talenthr/talenthr/pkg/mail"
)

const (
	defaultOTPTTL         = 10 * time.Minute
	defaultOTPDigits      = 6
	defaultOTPMaxAttempts = 5

	// OTPPurposeEmailVerification confirms ownership of a signup email.
	OTPPurposeEmailVerification = "email_verification"
	// OTPPurposePasswordReset gates the password reset flow.
	OTPPurposePasswordReset = "password_reset"
)

var (
	// ErrOTPInvalid covers unknown, mismatched and expired codes uniformly.
	ErrOTPInvalid = apperrors.New("OTP_INVALID", "Invalid or expired code", http.StatusBadRequest)
	// ErrOTPAttemptsExceeded is returned once the attempt cap is reached.
	ErrOTPAttemptsExceeded = apperrors.New("OTP_ATTEMPTS_EXCEEDED", "Too many incorrect attempts, request a new code", http.StatusBadRequest)
)

var otpPurposes = map[string]struct{}{
	OTPPurposeEmailVerification: {},
	OTPPurposePasswordReset:     {},
}

// OTPOption customises OTPService behaviour.
type OTPOption func(*OTPService)

// WithOTPTTL overrides the code lifetime.
func WithOTPTTL(d time.Duration) OTPOption {
	return func(s *OTPService) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithOTPMaxAttempts overrides the verification attempt cap.
func WithOTPMaxAttempts(n int) OTPOption {
	return func(s *OTPService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithOTPClock injects a custom clock primarily for testing.
func WithOTPClock(clock func() time.Time) OTPOption {
	return func(s *OTPService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// OTPService issues and verifies short-lived numeric codes delivered by email.
// Codes are stored hashed and consumed on first successful verification.
type OTPService struct {
	db          *gorm.DB
	mailer      mail.Mailer
	ttl         time.Duration
	digits      int
	maxAttempts int
	now         func() time.Time
}

// NewOTPService constructs an OTPService with the provided dependencies.
func NewOTPService(db *gorm.DB, mailer mail.Mailer, opts ...OTPOption) (*OTPService, error) {
	if db == nil {
		return nil, errors.New("otp service: db is required")
	}

	service := &OTPService{
		db:          db,
		mailer:      mailer,
		ttl:         defaultOTPTTL,
		digits:      defaultOTPDigits,
		maxAttempts: defaultOTPMaxAttempts,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Issue generates a fresh code for the email and purpose, invalidating any
// earlier unconsumed codes, and emails the plaintext code.
func (s *OTPService) Issue(ctx context.Context, email, purpose string) (*models.OTP, error) {
	ctx = ensureContext(ctx)

	email = normaliseEmail(email)
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if _, ok := otpPurposes[purpose]; !ok {
		return nil, apperrors.NewBadRequest("unknown code purpose")
	}

	code, err := crypto.GenerateNumericCode(s.digits)
	if err != nil {
		return nil, fmt.Errorf("otp service: generate code: %w", err)
	}

	hash, err := crypto.HashCode(code)
	if err != nil {
		return nil, fmt.Errorf("otp service: hash code: %w", err)
	}

	now := s.now()
	otp := &models.OTP{
		Email:       email,
		Purpose:     purpose,
		CodeHash:    hash,
		MaxAttempts: s.maxAttempts,
		ExpiresAt:   now.Add(s.ttl),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OTP{}).
			Where("email = ? AND purpose = ? AND consumed_at IS NULL", email, purpose).
			Update("expires_at", now).Error; err != nil {
			return err
		}
		return tx.Create(otp).Error
	})
	if err != nil {
		return nil, fmt.Errorf("otp service: store code: %w", err)
	}

	if err := s.sendCodeMail(ctx, email, code); err != nil {
		return nil, err
	}

	return otp, nil
}

// Verify checks a submitted code, counting the attempt before comparing so a
// flood of wrong guesses cannot reset the cap. The code is consumed on success.
func (s *OTPService) Verify(ctx context.Context, email, purpose, code string) error {
	ctx = ensureContext(ctx)

	email = normaliseEmail(email)
	code = trimmed(code)
	if email == "" || code == "" {
		return ErrOTPInvalid
	}

	now := s.now()

	var otp models.OTP
	err := s.db.WithContext(ctx).
		Where("email = ? AND purpose = ? AND consumed_at IS NULL AND expires_at > ?", email, purpose, now).
		Order("created_at DESC").
		First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOTPInvalid
	}
	if err != nil {
		return fmt.Errorf("otp service: find code: %w", err)
	}

	if otp.Attempts >= otp.MaxAttempts {
		return ErrOTPAttemptsExceeded
	}

	if err := s.db.WithContext(ctx).
		Model(&otp).
		Update("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
		return fmt.Errorf("otp service: count attempt: %w", err)
	}
	otp.Attempts++

	if !crypto.VerifyCode(otp.CodeHash, code) {
		if otp.Attempts >= otp.MaxAttempts {
			return ErrOTPAttemptsExceeded
		}
		return ErrOTPInvalid
	}

	if err := s.db.WithContext(ctx).
		Model(&otp).
		Update("consumed_at", now).Error; err != nil {
		return fmt.Errorf("otp service: consume code: %w", err)
	}

	return nil
}

// PurgeExpired deletes consumed and expired codes. Called by the maintenance
// cleaner; verification never matches these rows anyway.
func (s *OTPService) PurgeExpired(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("expires_at < ? OR consumed_at IS NOT NULL", s.now()).
		Delete(&models.OTP{})
	if result.Error != nil {
		return 0, fmt.Errorf("otp service: purge: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *OTPService) sendCodeMail(ctx context.Context, email, code string) error {
	if s.mailer == nil {
		return nil
	}

	message := mail.Message{
		To:      []string{email},
		Subject: "Your TalentHR verification code",
		Body:    fmt.Sprintf("Your verification code is %s. It expires in %d minutes.\n", code, int(s.ttl.Minutes())),
	}
	if err := s.mailer.Send(ctx, message); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		return fmt.Errorf("otp service: send email: %w", err)
	}
	return nil
}
