package domain

import "time"

// Session is an authenticated login. The opaque high-entropy token doubles as
// the primary key; there is no signed or structured token format. ExpiresAt is
// fixed at creation; LastAccessedAt tracks usage but never extends the expiry.
type Session struct {
	ID             string     `gorm:"type:text;primaryKey" db:"id"`
	UserID         string     `gorm:"type:text;index;not null" db:"user_id"`
	ExpiresAt      time.Time  `gorm:"not null" db:"expires_at"`
	CreatedAt      time.Time  `gorm:"not null" db:"created_at"`
	LastAccessedAt *time.Time `db:"last_accessed_at"`
}

func (Session) TableName() string { return "admin_sessions" }
