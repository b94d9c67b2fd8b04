package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/models"
	"github.com/talenthr/talenthr/pkg/crypto"
)

type recordingRevoker struct {
	revoked []string
}

func (r *recordingRevoker) RevokeUserSessions(ctx context.Context, userID string) error {
	r.revoked = append(r.revoked, userID)
	return nil
}

func newUserService(t *testing.T, db *gorm.DB, revoker SessionRevoker) *UserService {
	t.Helper()

	svc, err := NewUserService(db, revoker)
	require.NoError(t, err)
	return svc
}

func TestUserListScopedByRole(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)
	manager := seedUser(t, db, company.ID, "mgr@acme.test", models.RoleManager)
	report := seedUser(t, db, company.ID, "report@acme.test", models.RoleEmployee)
	require.NoError(t, db.Model(report).Update("manager_id", manager.ID).Error)
	loner := seedUser(t, db, company.ID, "loner@acme.test", models.RoleEmployee)

	other := seedCompany(t, db, "Globex")
	seedUser(t, db, other.ID, "spy@globex.test", models.RoleAdmin)

	svc := newUserService(t, db, nil)

	// Admin sees the whole company and nothing beyond it.
	result, err := svc.List(context.Background(), actorFor(admin), ListUsersInput{})
	require.NoError(t, err)
	require.EqualValues(t, 4, result.Total)

	// Manager sees direct reports plus self.
	result, err = svc.List(context.Background(), actorFor(manager), ListUsersInput{})
	require.NoError(t, err)
	require.EqualValues(t, 2, result.Total)

	// An employee sees only themselves.
	result, err = svc.List(context.Background(), actorFor(loner), ListUsersInput{})
	require.NoError(t, err)
	require.EqualValues(t, 1, result.Total)
	require.Equal(t, loner.ID, result.Users[0].ID)
}

func TestUserGetBlocksCrossCompany(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)

	other := seedCompany(t, db, "Globex")
	foreign := seedUser(t, db, other.ID, "emp@globex.test", models.RoleEmployee)

	svc := newUserService(t, db, nil)

	_, err := svc.Get(context.Background(), actorFor(admin), foreign.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)

	svc := newUserService(t, db, nil)

	input := CreateUserInput{
		Email:    "new@acme.test",
		Password: "s3cret-pass",
		Role:     models.RoleEmployee,
	}
	_, err := svc.Create(context.Background(), actorFor(admin), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), actorFor(admin), input)
	require.ErrorIs(t, err, ErrUserEmailTaken)
}

func TestUserDeactivateRevokesSessions(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)
	employee := seedUser(t, db, company.ID, "emp@acme.test", models.RoleEmployee)

	revoker := &recordingRevoker{}
	svc := newUserService(t, db, revoker)

	require.NoError(t, svc.Deactivate(context.Background(), actorFor(admin), employee.ID))
	require.Equal(t, []string{employee.ID}, revoker.revoked)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", employee.ID).Error)
	require.Equal(t, models.UserInactive, stored.Status)

	require.NoError(t, svc.Activate(context.Background(), actorFor(admin), employee.ID))
	require.NoError(t, db.First(&stored, "id = ?", employee.ID).Error)
	require.Equal(t, models.UserActive, stored.Status)
}

func TestUserChangePasswordVerifiesCurrent(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	user := seedUser(t, db, company.ID, "emp@acme.test", models.RoleEmployee)

	hashed, err := crypto.HashPassword("old-pass")
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("password", hashed).Error)

	revoker := &recordingRevoker{}
	svc := newUserService(t, db, revoker)

	err = svc.ChangePassword(context.Background(), user.ID, "wrong", "new-pass")
	require.ErrorIs(t, err, ErrPasswordMismatch)
	require.Empty(t, revoker.revoked)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "old-pass", "new-pass"))
	require.Equal(t, []string{user.ID}, revoker.revoked)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	require.True(t, crypto.VerifyPassword(stored.Password, "new-pass"))
}

func TestUserSetRoleAndManager(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)
	employee := seedUser(t, db, company.ID, "emp@acme.test", models.RoleEmployee)
	manager := seedUser(t, db, company.ID, "mgr@acme.test", models.RoleManager)

	svc := newUserService(t, db, nil)

	updated, err := svc.SetRole(context.Background(), actorFor(admin), employee.ID, models.RoleRecruiter)
	require.NoError(t, err)
	require.Equal(t, employee.ID, updated.ID)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", employee.ID).Error)
	require.Equal(t, models.RoleRecruiter, stored.Role)

	_, err = svc.Update(context.Background(), actorFor(admin), employee.ID, UpdateUserInput{ManagerID: &manager.ID})
	require.NoError(t, err)
	require.NoError(t, db.First(&stored, "id = ?", employee.ID).Error)
	require.NotNil(t, stored.ManagerID)
	require.Equal(t, manager.ID, *stored.ManagerID)

	// Self-management is rejected.
	_, err = svc.Update(context.Background(), actorFor(admin), employee.ID, UpdateUserInput{ManagerID: &employee.ID})
	require.ErrorIs(t, err, ErrManagerInvalid)
}
