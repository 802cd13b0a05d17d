package user

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// User represents a portal account. TOTP fields are populated only while
// two-factor authentication is enabled; BackupCodes holds one-way hashes,
// never plaintext codes.
type User struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string  `gorm:"type:varchar(255);not null;unique" json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null" json:"-"`
	Name         string  `gorm:"type:varchar(255);not null" json:"name"`
	Role         string  `gorm:"type:varchar(50);not null;default:'staff'" json:"role"`
	Phone        *string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Active       bool    `gorm:"type:bool;default:true" json:"active"`

	TOTPSecret  *string     `gorm:"type:varchar(255)" json:"-"`
	TOTPEnabled bool        `gorm:"type:bool;default:false" json:"totp_enabled"`
	BackupCodes StringSlice `gorm:"type:json" json:"-"` // JSON column of hashed codes

	// Notification preferences
	EmailNotifications bool `gorm:"type:bool;default:true" json:"email_notifications"`
	WeeklyDigest       bool `gorm:"type:bool;default:false" json:"weekly_digest"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"` // Soft delete field
}

// IsStaff reports whether the user holds a back-office role.
func (u *User) IsStaff() bool {
	return u.Role == "admin" || u.Role == "secretary"
}

// StringSlice is a custom type to handle JSON serialization for PostgreSQL
type StringSlice []string

// Scan implements the Scanner interface for database deserialization
func (ss *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*ss = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, ss)
	case string:
		return json.Unmarshal([]byte(v), ss)
	default:
		return errors.New("type assertion to []byte failed")
	}
}

// Value implements the driver Valuer interface for database serialization
func (ss StringSlice) Value() (driver.Value, error) {
	if ss == nil {
		return nil, nil
	}
	return json.Marshal(ss)
}
