package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/models"
	"github.com/talenthr/talenthr/pkg/crypto"
)

func newOTPService(t *testing.T, db *gorm.DB, clock func() time.Time) *OTPService {
	t.Helper()

	svc, err := NewOTPService(db, nil, WithOTPClock(clock))
	require.NoError(t, err)
	return svc
}

// issueKnownCode stores an OTP with a code the test controls, since Issue
// never returns the plaintext.
func issueKnownCode(t *testing.T, db *gorm.DB, svc *OTPService, email, code string) *models.OTP {
	t.Helper()

	hash, err := crypto.HashCode(code)
	require.NoError(t, err)

	otp := &models.OTP{
		Email:       email,
		Purpose:     OTPPurposeEmailVerification,
		CodeHash:    hash,
		MaxAttempts: svc.maxAttempts,
		ExpiresAt:   svc.now().Add(svc.ttl),
	}
	require.NoError(t, db.Create(otp).Error)
	return otp
}

func TestOTPVerifyConsumesOnSuccess(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newOTPService(t, db, time.Now)
	issueKnownCode(t, db, svc, "user@acme.test", "123456")

	require.NoError(t, svc.Verify(context.Background(), "user@acme.test", OTPPurposeEmailVerification, "123456"))

	// Consumed codes never verify again.
	err := svc.Verify(context.Background(), "user@acme.test", OTPPurposeEmailVerification, "123456")
	require.ErrorIs(t, err, ErrOTPInvalid)
}

func TestOTPVerifyRejectsWrongCode(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newOTPService(t, db, time.Now)
	issueKnownCode(t, db, svc, "user@acme.test", "123456")

	err := svc.Verify(context.Background(), "user@acme.test", OTPPurposeEmailVerification, "654321")
	require.ErrorIs(t, err, ErrOTPInvalid)
}

func TestOTPVerifyFailsAfterAttemptCap(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newOTPService(t, db, time.Now)
	issueKnownCode(t, db, svc, "user@acme.test", "123456")

	for i := 0; i < defaultOTPMaxAttempts; i++ {
		err := svc.Verify(context.Background(), "user@acme.test", OTPPurposeEmailVerification, "000000")
		require.Error(t, err)
	}

	// Even the correct code is rejected once the cap is reached.
	err := svc.Verify(context.Background(), "user@acme.test", OTPPurposeEmailVerification, "123456")
	require.ErrorIs(t, err, ErrOTPAttemptsExceeded)
}

func TestOTPVerifyRejectsExpired(t *testing.T) {
	db := openServiceTestDB(t)

	current := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newOTPService(t, db, func() time.Time { return current })
	issueKnownCode(t, db, svc, "user@acme.test", "123456")

	current = current.Add(11 * time.Minute)

	err := svc.Verify(context.Background(), "user@acme.test", OTPPurposeEmailVerification, "123456")
	require.ErrorIs(t, err, ErrOTPInvalid)
}

func TestOTPIssueReplacesPriorCode(t *testing.T) {
	db := openServiceTestDB(t)

	current := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newOTPService(t, db, func() time.Time { return current })
	issueKnownCode(t, db, svc, "user@acme.test", "123456")

	_, err := svc.Issue(context.Background(), "user@acme.test", OTPPurposeEmailVerification)
	require.NoError(t, err)

	// The earlier code was expired by the re-issue.
	err = svc.Verify(context.Background(), "user@acme.test", OTPPurposeEmailVerification, "123456")
	require.ErrorIs(t, err, ErrOTPInvalid)
}

func TestOTPPurgeExpired(t *testing.T) {
	db := openServiceTestDB(t)

	current := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newOTPService(t, db, func() time.Time { return current })
	issueKnownCode(t, db, svc, "user@acme.test", "123456")

	current = current.Add(time.Hour)

	removed, err := svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}
