package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/database/testutil"
	"github.com/talenthr/talenthr/internal/models"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
}

func seedCompany(t *testing.T, db *gorm.DB, name string) *models.Company {
	t.Helper()

	company := &models.Company{
		Name:   name,
		Slug:   Slugify(name),
		Status: models.CompanyActive,
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

func seedUser(t *testing.T, db *gorm.DB, companyID, email string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Email:     email,
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		Status:    models.UserActive,
		CompanyID: companyID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func actorFor(user *models.User) Actor {
	return Actor{UserID: user.ID, CompanyID: user.CompanyID, Role: user.Role}
}
