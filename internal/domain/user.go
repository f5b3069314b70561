package domain

import "time"

type User struct {
	ID        string     `gorm:"type:text;primaryKey" db:"id" json:"id"`
	Email     string     `gorm:"type:citext;uniqueIndex:ux_users_email" db:"email" json:"email"`
	Name      *string    `gorm:"type:text" db:"name" json:"name"`
	Role      Role       `gorm:"type:text;not null" db:"role" json:"role"`
	CreatedAt time.Time  `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt *time.Time `db:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }
