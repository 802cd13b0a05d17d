package user

import "time"

// TrustedDevice exempts a login from the second-factor challenge until it
// expires. The token is a random UUID handed to the browser as a cookie.
type TrustedDevice struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
	Token      string    `gorm:"type:varchar(255);not null;unique" json:"-"`
	DeviceName string    `gorm:"type:varchar(255);not null" json:"device_name"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt  time.Time `gorm:"not null;index" json:"expires_at"`
}

// TableName sets the table name for the TrustedDevice model
func (TrustedDevice) TableName() string {
	return "trusted_devices"
}

// IsExpired reports whether the exemption has lapsed.
func (td *TrustedDevice) IsExpired() bool {
	return time.Now().After(td.ExpiresAt)
}
