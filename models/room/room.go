package room

import "time"

// Room represents a bookable meeting room.
type Room struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string     `gorm:"type:varchar(255);not null;unique" json:"name"`
	Location  string     `gorm:"type:varchar(255)" json:"location"`
	Capacity  int        `gorm:"type:int;not null;default:0" json:"capacity"`
	Equipment string     `gorm:"type:text" json:"equipment"`
	Active    bool       `gorm:"type:bool;default:true" json:"active"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
