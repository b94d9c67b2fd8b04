package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/database"
	"github.com/talenthr/talenthr/internal/models"
)

func openSessionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Config{Driver: "sqlite"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func createSessionTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	company := &models.Company{Name: "Acme " + email, Slug: "acme-" + email}
	require.NoError(t, db.Create(company).Error)

	user := &models.User{
		Email:     email,
		Password:  "hashed",
		Role:      models.RoleEmployee,
		Status:    models.UserActive,
		CompanyID: company.ID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newSessionService(t *testing.T, db *gorm.DB, clock func() time.Time) *SessionService {
	t.Helper()

	jwtSvc, err := NewJWTService(JWTConfig{Secret: "test-secret", Clock: clock})
	require.NoError(t, err)

	svc, err := NewSessionService(db, jwtSvc, SessionConfig{Clock: clock})
	require.NoError(t, err)
	return svc
}

func TestSessionServiceCreateAndRefresh(t *testing.T) {
	db := openSessionTestDB(t)
	user := createSessionTestUser(t, db, "refresh@example.com")

	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newSessionService(t, db, func() time.Time { return current })

	pair, session, err := svc.CreateSession(user, SessionMetadata{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, user.ID, session.UserID)

	refreshed, rotated, err := svc.RefreshSession(pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)
	require.NotEqual(t, pair.RefreshToken, refreshed.RefreshToken)
	require.Equal(t, session.ID, rotated.ID)

	// The old refresh token is dead after rotation.
	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionServiceRefreshRejectsExpired(t *testing.T) {
	db := openSessionTestDB(t)
	user := createSessionTestUser(t, db, "expired@example.com")

	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newSessionService(t, db, func() time.Time { return current })

	pair, _, err := svc.CreateSession(user, SessionMetadata{})
	require.NoError(t, err)

	current = current.Add(8 * 24 * time.Hour)

	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestSessionServiceRefreshRejectsRevoked(t *testing.T) {
	db := openSessionTestDB(t)
	user := createSessionTestUser(t, db, "revoked@example.com")

	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newSessionService(t, db, func() time.Time { return current })

	pair, session, err := svc.CreateSession(user, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeSession(session.ID))

	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionRevoked)
}

func TestSessionServiceRefreshRejectsInactiveUser(t *testing.T) {
	db := openSessionTestDB(t)
	user := createSessionTestUser(t, db, "inactive@example.com")

	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newSessionService(t, db, func() time.Time { return current })

	pair, _, err := svc.CreateSession(user, SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, db.Model(user).Update("status", models.UserInactive).Error)

	_, _, err = svc.RefreshSession(pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionUserGone)
}

func TestSessionServiceCleanupExpired(t *testing.T) {
	db := openSessionTestDB(t)
	user := createSessionTestUser(t, db, "cleanup@example.com")

	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newSessionService(t, db, func() time.Time { return current })

	_, _, err := svc.CreateSession(user, SessionMetadata{})
	require.NoError(t, err)

	current = current.Add(8 * 24 * time.Hour)

	removed, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	var count int64
	require.NoError(t, db.Model(&models.Session{}).Count(&count).Error)
	require.Zero(t, count)
}
