package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/models"
)

func newInvitationService(t *testing.T, db *gorm.DB, clock func() time.Time) *InvitationService {
	t.Helper()

	svc, err := NewInvitationService(db, nil, WithInvitationClock(clock))
	require.NoError(t, err)
	return svc
}

func TestInvitationCreateRejectsExistingUser(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)
	seedUser(t, db, company.ID, "existing@acme.test", models.RoleEmployee)

	svc := newInvitationService(t, db, time.Now)

	_, _, err := svc.Create(context.Background(), CreateInvitationInput{
		CompanyID: company.ID,
		Email:     "existing@acme.test",
		Role:      models.RoleEmployee,
		InvitedBy: admin.ID,
	})
	require.ErrorIs(t, err, ErrInvitationEmailInUse)
}

func TestInvitationCreateRejectsDuplicatePending(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)

	svc := newInvitationService(t, db, time.Now)
	input := CreateInvitationInput{
		CompanyID: company.ID,
		Email:     "new@acme.test",
		Role:      models.RoleEmployee,
		InvitedBy: admin.ID,
	}

	_, _, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, _, err = svc.Create(context.Background(), input)
	require.ErrorIs(t, err, ErrInvitationPendingExists)
}

func TestInvitationValidateLazilyExpires(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)

	current := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newInvitationService(t, db, func() time.Time { return current })

	invitation, token, err := svc.Create(context.Background(), CreateInvitationInput{
		CompanyID: company.ID,
		Email:     "late@acme.test",
		Role:      models.RoleEmployee,
		InvitedBy: admin.ID,
	})
	require.NoError(t, err)

	current = current.Add(73 * time.Hour)

	_, err = svc.Validate(context.Background(), token)
	require.ErrorIs(t, err, ErrInvitationExpired)

	// The pending row was transitioned to the terminal expired state.
	var stored models.Invitation
	require.NoError(t, db.First(&stored, "id = ?", invitation.ID).Error)
	require.Equal(t, models.InvitationExpired, stored.Status)

	// A later read inside the original window would still be invalid.
	current = current.Add(-72 * time.Hour)
	_, err = svc.Validate(context.Background(), token)
	require.ErrorIs(t, err, ErrInvitationConsumed)
}

func TestInvitationAcceptCreatesUserAndConsumes(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)

	svc := newInvitationService(t, db, time.Now)

	_, token, err := svc.Create(context.Background(), CreateInvitationInput{
		CompanyID: company.ID,
		Email:     "hire@acme.test",
		Role:      models.RoleManager,
		InvitedBy: admin.ID,
	})
	require.NoError(t, err)

	user, err := svc.Accept(context.Background(), AcceptInvitationInput{
		Token:     token,
		Password:  "s3cret-pass",
		FirstName: "New",
		LastName:  "Hire",
	})
	require.NoError(t, err)
	require.Equal(t, company.ID, user.CompanyID)
	require.Equal(t, models.RoleManager, user.Role)
	require.Equal(t, "hire@acme.test", user.Email)

	// Accepted invitations can never validate again.
	_, err = svc.Validate(context.Background(), token)
	require.ErrorIs(t, err, ErrInvitationConsumed)

	_, err = svc.Accept(context.Background(), AcceptInvitationInput{Token: token, Password: "other"})
	require.ErrorIs(t, err, ErrInvitationConsumed)
}

func TestInvitationCancelBlocksAcceptance(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)

	svc := newInvitationService(t, db, time.Now)

	invitation, token, err := svc.Create(context.Background(), CreateInvitationInput{
		CompanyID: company.ID,
		Email:     "cancel@acme.test",
		Role:      models.RoleEmployee,
		InvitedBy: admin.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), company.ID, invitation.ID))

	_, err = svc.Validate(context.Background(), token)
	require.ErrorIs(t, err, ErrInvitationConsumed)

	// Cancelling twice reports not found; the pending row is gone.
	err = svc.Cancel(context.Background(), company.ID, invitation.ID)
	require.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestInvitationResendRotatesToken(t *testing.T) {
	db := openServiceTestDB(t)
	company := seedCompany(t, db, "Acme")
	admin := seedUser(t, db, company.ID, "admin@acme.test", models.RoleAdmin)

	svc := newInvitationService(t, db, time.Now)

	invitation, token, err := svc.Create(context.Background(), CreateInvitationInput{
		CompanyID: company.ID,
		Email:     "resend@acme.test",
		Role:      models.RoleEmployee,
		InvitedBy: admin.ID,
	})
	require.NoError(t, err)

	_, rotated, err := svc.Resend(context.Background(), company.ID, invitation.ID)
	require.NoError(t, err)
	require.NotEqual(t, token, rotated)

	_, err = svc.Validate(context.Background(), token)
	require.ErrorIs(t, err, ErrInvitationNotFound)

	_, err = svc.Validate(context.Background(), rotated)
	require.NoError(t, err)
}
