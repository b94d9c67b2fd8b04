package database

import (
	"gorm.io/gorm"

	"github.com/talenthr/talenthr/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Session{},
		&models.Invitation{},
		&models.OTP{},
		&models.Attendance{},
		&models.LeaveType{},
		&models.LeaveRequest{},
		&models.LeaveBalance{},
		&models.Goal{},
		&models.PerformanceReview{},
		&models.JobPosting{},
		&models.Candidate{},
		&models.Interview{},
		&models.CacheEntry{},
	)
}
