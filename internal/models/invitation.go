package models

import "time"

// InvitationStatus tracks the single-use invitation lifecycle. Pending is the
// only non-terminal state.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationExpired   InvitationStatus = "expired"
	InvitationCancelled InvitationStatus = "cancelled"
)

// Invitation scopes a prospective user to a company and role. Only the hash of
// the raw token is ever stored; the raw form travels once in the invite link.
type Invitation struct {
	BaseModel

	CompanyID string `gorm:"type:uuid;not null;uniqueIndex:idx_invitations_company_email" json:"company_id"`
	Email     string `gorm:"not null;uniqueIndex:idx_invitations_company_email" json:"email"`
	Role      Role   `gorm:"type:varchar(20);not null" json:"role"`
	InvitedBy string `gorm:"type:uuid;not null" json:"invited_by"`

	TokenHash string           `gorm:"uniqueIndex;not null" json:"-"`
	Status    InvitationStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	ExpiresAt time.Time        `gorm:"index" json:"expires_at"`

	AcceptedAt  *time.Time `json:"accepted_at"`
	CancelledAt *time.Time `json:"cancelled_at"`

	Company *Company `json:"company,omitempty"`
}

// IsExpired reports whether the invitation is past its expiry at the given instant.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// CanBeAccepted reports whether the invitation is still redeemable.
func (i *Invitation) CanBeAccepted(now time.Time) bool {
	return i.Status == InvitationPending && !i.IsExpired(now)
}
