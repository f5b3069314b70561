package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Credential is a registered WebAuthn authenticator. ID holds the credential
// identifier exactly as it appears on the wire; it is the lookup key for
// authentication responses and must never be re-encoded. PublicKey holds the
// COSE key material base64url-encoded exactly once.
type Credential struct {
	ID         string        `gorm:"type:text;primaryKey" db:"id"`
	UserID     string        `gorm:"type:text;index;not null" db:"user_id"`
	PublicKey  string        `gorm:"type:text;not null" db:"public_key"`
	Counter    uint32        `gorm:"not null;default:0" db:"counter"`
	DeviceType string        `gorm:"type:text" db:"device_type"`
	BackedUp   bool          `gorm:"not null;default:false" db:"backed_up"`
	Transports TransportList `gorm:"type:text" db:"transports"`
	CreatedAt  time.Time     `gorm:"not null" db:"created_at"`
	LastUsedAt *time.Time    `db:"last_used_at"`
}

func (Credential) TableName() string { return "admin_credentials" }

// TransportList is the authenticator transport hints as the domain sees them.
// The JSON string form only exists inside the storage layer.
type TransportList []string

func (t TransportList) Value() (driver.Value, error) {
	if len(t) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *TransportList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		if v == "" {
			*t = nil
			return nil
		}
		return json.Unmarshal([]byte(v), t)
	case []byte:
		if len(v) == 0 {
			*t = nil
			return nil
		}
		return json.Unmarshal(v, t)
	default:
		return fmt.Errorf("transports: cannot scan %T", src)
	}
}
