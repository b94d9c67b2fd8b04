package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// CompanyStatus enumerates tenant lifecycle states.
type CompanyStatus string

const (
	CompanyActive    CompanyStatus = "active"
	CompanySuspended CompanyStatus = "suspended"
)

// Company is the tenant boundary; every domain record carries a CompanyID.
type Company struct {
	BaseModel

	Name   string        `gorm:"uniqueIndex;not null" json:"name"`
	Slug   string        `gorm:"uniqueIndex;not null" json:"slug"`
	Status CompanyStatus `gorm:"type:varchar(20);not null;default:active" json:"status"`

	// Settings holds tenant preferences such as timezone and work-day bounds.
	Settings datatypes.JSON `json:"settings"`

	Users []User `gorm:"foreignKey:CompanyID" json:"users,omitempty"`
}

// CompanySettings is the decoded form of Company.Settings.
type CompanySettings struct {
	Timezone     string `json:"timezone"`
	WorkDayStart string `json:"work_day_start"`
	WorkDayEnd   string `json:"work_day_end"`
	WeekStart    string `json:"week_start"`
}

// DefaultCompanySettings returns the settings applied to new tenants.
func DefaultCompanySettings() CompanySettings {
	return CompanySettings{
		Timezone:     "UTC",
		WorkDayStart: "09:00",
		WorkDayEnd:   "17:00",
		WeekStart:    "monday",
	}
}

// DecodedSettings parses the JSON settings column, falling back to defaults
// for missing fields.
func (c *Company) DecodedSettings() CompanySettings {
	settings := DefaultCompanySettings()
	if len(c.Settings) == 0 {
		return settings
	}
	_ = json.Unmarshal(c.Settings, &settings)
	if settings.Timezone == "" {
		settings.Timezone = "UTC"
	}
	if settings.WorkDayStart == "" {
		settings.WorkDayStart = "09:00"
	}
	if settings.WorkDayEnd == "" {
		settings.WorkDayEnd = "17:00"
	}
	if settings.WeekStart == "" {
		settings.WeekStart = "monday"
	}
	return settings
}
