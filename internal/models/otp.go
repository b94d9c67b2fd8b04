package models

import "time"

// OTP stores a hashed one-time code tied to an email and purpose. Attempts are
// counted so verification hard-fails at MaxAttempts regardless of the code.
type OTP struct {
	BaseModel

	Email   string `gorm:"not null;index:idx_otps_email_purpose" json:"email"`
	Purpose string `gorm:"type:varchar(40);not null;index:idx_otps_email_purpose" json:"purpose"`

	CodeHash    string `gorm:"not null" json:"-"`
	Attempts    int    `gorm:"default:0" json:"attempts"`
	MaxAttempts int    `gorm:"default:5" json:"max_attempts"`

	ExpiresAt  time.Time  `gorm:"index" json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at"`
}
