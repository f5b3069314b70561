package domain

import "time"

// Invitation gates credential registration: only the holder of a valid token
// may begin the registration ceremony. At most one unused invitation exists
// per email (enforced by a partial unique index; creating a newer one
// supersedes the old).
type Invitation struct {
	ID        string     `gorm:"type:text;primaryKey" db:"id"`
	Email     string     `gorm:"type:citext;index" db:"email"`
	Token     string     `gorm:"type:text;uniqueIndex:ux_admin_invitations_token" db:"token"`
	InvitedBy string     `gorm:"type:text;not null" db:"invited_by"`
	Role      Role       `gorm:"type:text;not null" db:"role"`
	ExpiresAt time.Time  `gorm:"not null" db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `gorm:"not null" db:"created_at"`
}

func (Invitation) TableName() string { return "admin_invitations" }

// Usable reports whether the invitation can still be redeemed at the given time.
func (i *Invitation) Usable(now time.Time) bool {
	return i.UsedAt == nil && now.Before(i.ExpiresAt)
}
