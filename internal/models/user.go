package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enumerates the access levels a user can hold within a company.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleHRManager Role = "hr_manager"
	RoleRecruiter Role = "recruiter"
	RoleManager   Role = "manager"
	RoleEmployee  Role = "employee"
)

// ValidRole reports whether the supplied value is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleHRManager, RoleRecruiter, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// UserStatus enumerates account lifecycle states.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// User describes a company-scoped account. Email is stored lowercased and is
// unique across all tenants.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	JobTitle   string `json:"job_title"`
	Department string `json:"department"`

	Role      Role       `gorm:"type:varchar(20);not null;default:employee;index" json:"role"`
	Status    UserStatus `gorm:"type:varchar(20);not null;default:active" json:"status"`
	CompanyID string     `gorm:"type:uuid;not null;index" json:"company_id"`
	Company   *Company   `json:"company,omitempty"`

	// ManagerID links an employee to their direct manager for report scoping.
	ManagerID *string `gorm:"type:uuid;index" json:"manager_id,omitempty"`
	Manager   *User   `gorm:"foreignKey:ManagerID" json:"-"`

	Sessions []Session `gorm:"foreignKey:UserID" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at"`
	LastLoginIP string     `json:"last_login_ip"`

	FailedAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil    *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// FullName joins the user's first and last names.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == UserActive
}
