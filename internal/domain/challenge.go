package domain

import "time"

type ChallengeType string

const (
	ChallengeRegistration   ChallengeType = "registration"
	ChallengeAuthentication ChallengeType = "authentication"
)

// Challenge is the single-use server-side half of a WebAuthn ceremony. It is
// deleted on successful verification and otherwise left to expire.
type Challenge struct {
	ID        string        `gorm:"type:text;primaryKey" db:"id"`
	Challenge string        `gorm:"type:text;not null" db:"challenge"`
	Type      ChallengeType `gorm:"type:text;not null" db:"type"`
	Email     *string       `gorm:"type:citext" db:"email"` // set for registration, nil for authentication
	ExpiresAt time.Time     `gorm:"not null" db:"expires_at"`
	CreatedAt time.Time     `gorm:"not null" db:"created_at"`
}

func (Challenge) TableName() string { return "auth_challenges" }

func (c *Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
