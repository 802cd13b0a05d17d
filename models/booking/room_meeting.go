package booking

import (
	"time"

	roomModel "office-portal/models/room"
)

// RoomMeeting is a confirmed room reservation, created directly by staff or
// materialized from an accepted BookingRequest.
type RoomMeeting struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	RoomID uint           `gorm:"not null;index" json:"room_id"`
	Room   roomModel.Room `gorm:"foreignKey:RoomID" json:"room"`

	Title       string  `gorm:"type:varchar(255);not null" json:"title"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	StartTime time.Time `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	CreatedBy string    `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the RoomMeeting model
func (RoomMeeting) TableName() string {
	return "room_meetings"
}
