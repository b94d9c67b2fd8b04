package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talenthr/talenthr/internal/models"
)

func TestSlugify(t *testing.T) {
	require.Equal(t, "acme-corp", Slugify("Acme Corp"))
	require.Equal(t, "acme-co", Slugify("  Acme & Co!  "))
	require.Equal(t, "42-things", Slugify("42 Things"))
}

func TestCompanyRegisterCreatesAdmin(t *testing.T) {
	db := openServiceTestDB(t)

	svc, err := NewCompanyService(db)
	require.NoError(t, err)

	company, admin, err := svc.Register(context.Background(), RegisterCompanyInput{
		CompanyName: "Acme Corp",
		Email:       "Founder@Acme.Test",
		Password:    "s3cret-pass",
		FirstName:   "Ada",
	})
	require.NoError(t, err)
	require.Equal(t, "acme-corp", company.Slug)
	require.Equal(t, models.RoleAdmin, admin.Role)
	require.Equal(t, company.ID, admin.CompanyID)
	require.Equal(t, "founder@acme.test", admin.Email)
	require.NotEqual(t, "s3cret-pass", admin.Password)
}

func TestCompanyRegisterRejectsDuplicateName(t *testing.T) {
	db := openServiceTestDB(t)

	svc, err := NewCompanyService(db)
	require.NoError(t, err)

	input := RegisterCompanyInput{
		CompanyName: "Acme Corp",
		Email:       "one@acme.test",
		Password:    "s3cret-pass",
	}
	_, _, err = svc.Register(context.Background(), input)
	require.NoError(t, err)

	input.Email = "two@acme.test"
	_, _, err = svc.Register(context.Background(), input)
	require.ErrorIs(t, err, ErrCompanyNameTaken)
}

func TestCompanyRegisterRejectsDuplicateEmail(t *testing.T) {
	db := openServiceTestDB(t)

	svc, err := NewCompanyService(db)
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), RegisterCompanyInput{
		CompanyName: "Acme Corp",
		Email:       "founder@acme.test",
		Password:    "s3cret-pass",
	})
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), RegisterCompanyInput{
		CompanyName: "Globex",
		Email:       "founder@acme.test",
		Password:    "s3cret-pass",
	})
	require.ErrorIs(t, err, ErrUserEmailTaken)

	// The failed registration rolled back the company row too.
	var count int64
	require.NoError(t, db.Model(&models.Company{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCompanySettingsRoundTrip(t *testing.T) {
	db := openServiceTestDB(t)

	svc, err := NewCompanyService(db)
	require.NoError(t, err)

	company, _, err := svc.Register(context.Background(), RegisterCompanyInput{
		CompanyName: "Acme Corp",
		Email:       "founder@acme.test",
		Password:    "s3cret-pass",
	})
	require.NoError(t, err)

	settings, err := svc.Settings(context.Background(), company.ID)
	require.NoError(t, err)
	require.Equal(t, "09:00", settings.WorkDayStart)

	updated, err := svc.UpdateSettings(context.Background(), company.ID, models.CompanySettings{
		WorkDayStart: "08:30",
		Timezone:     "Europe/Berlin",
	})
	require.NoError(t, err)
	require.Equal(t, "08:30", updated.WorkDayStart)
	require.Equal(t, "Europe/Berlin", updated.Timezone)
	// Untouched fields keep their prior values.
	require.Equal(t, "17:00", updated.WorkDayEnd)
}
