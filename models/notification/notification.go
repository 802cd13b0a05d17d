package notification

import "time"

// Notification is an in-app message shown in the portal bell menu.
type Notification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"type:varchar(100);not null" json:"type"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	Read      bool      `gorm:"type:bool;default:false;index" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
