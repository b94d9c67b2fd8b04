package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/models"
	"github.com/talenthr/talenthr/pkg/crypto"
)

func createCredentialTestUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()

	hashed, err := crypto.HashPassword(password)
	require.NoError(t, err)

	company := &models.Company{Name: "Acme " + email, Slug: "acme-" + email}
	require.NoError(t, db.Create(company).Error)

	user := &models.User{
		Email:     email,
		Password:  hashed,
		Role:      models.RoleEmployee,
		Status:    models.UserActive,
		CompanyID: company.ID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newCredentialService(t *testing.T, db *gorm.DB, clock func() time.Time) *CredentialService {
	t.Helper()

	svc, err := NewCredentialService(db, CredentialConfig{
		LockoutThreshold: 3,
		LockoutDuration:  15 * time.Minute,
		Clock:            clock,
	})
	require.NoError(t, err)
	return svc
}

func TestCredentialServiceVerifySuccess(t *testing.T) {
	db := openSessionTestDB(t)
	user := createCredentialTestUser(t, db, "login@example.com", "correct-horse")

	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newCredentialService(t, db, func() time.Time { return current })

	verified, err := svc.Verify(VerifyInput{
		Email:     "Login@Example.com",
		Password:  "correct-horse",
		IPAddress: "10.0.0.1",
	})
	require.NoError(t, err)
	require.Equal(t, user.ID, verified.ID)
	require.NotNil(t, verified.LastLoginAt)
	require.Equal(t, "10.0.0.1", verified.LastLoginIP)
}

func TestCredentialServiceVerifyIndistinguishableFailures(t *testing.T) {
	db := openSessionTestDB(t)
	createCredentialTestUser(t, db, "known@example.com", "correct-horse")

	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newCredentialService(t, db, func() time.Time { return current })

	_, wrongPassword := svc.Verify(VerifyInput{Email: "known@example.com", Password: "nope"})
	_, unknownEmail := svc.Verify(VerifyInput{Email: "nobody@example.com", Password: "nope"})

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestCredentialServiceLocksAfterThreshold(t *testing.T) {
	db := openSessionTestDB(t)
	createCredentialTestUser(t, db, "lockout@example.com", "correct-horse")

	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newCredentialService(t, db, func() time.Time { return current })

	for i := 0; i < 2; i++ {
		_, err := svc.Verify(VerifyInput{Email: "lockout@example.com", Password: "nope"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// Third failure trips the lock.
	_, err := svc.Verify(VerifyInput{Email: "lockout@example.com", Password: "nope"})
	require.ErrorIs(t, err, ErrAccountLocked)

	// The correct password is rejected while the lock holds.
	_, err = svc.Verify(VerifyInput{Email: "lockout@example.com", Password: "correct-horse"})
	require.ErrorIs(t, err, ErrAccountLocked)
}

func TestCredentialServiceUnlocksAfterDuration(t *testing.T) {
	db := openSessionTestDB(t)
	user := createCredentialTestUser(t, db, "unlock@example.com", "correct-horse")

	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newCredentialService(t, db, func() time.Time { return current })

	for i := 0; i < 3; i++ {
		_, _ = svc.Verify(VerifyInput{Email: "unlock@example.com", Password: "nope"})
	}

	current = current.Add(16 * time.Minute)

	verified, err := svc.Verify(VerifyInput{Email: "unlock@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	require.Equal(t, user.ID, verified.ID)
	require.Zero(t, verified.FailedAttempts)
	require.Nil(t, verified.LockedUntil)
}

func TestCredentialServiceRejectsDisabledAccount(t *testing.T) {
	db := openSessionTestDB(t)
	user := createCredentialTestUser(t, db, "disabled@example.com", "correct-horse")

	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newCredentialService(t, db, func() time.Time { return current })

	require.NoError(t, db.Model(user).Update("status", models.UserInactive).Error)

	_, err := svc.Verify(VerifyInput{Email: "disabled@example.com", Password: "correct-horse"})
	require.ErrorIs(t, err, ErrAccountDisabled)
}
