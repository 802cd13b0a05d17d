package vehicle

import "time"

// Vehicle represents a bookable company vehicle.
type Vehicle struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	PlateNumber string     `gorm:"type:varchar(50);not null;unique" json:"plate_number"`
	Seats       int        `gorm:"type:int;not null;default:4" json:"seats"`
	Active      bool       `gorm:"type:bool;default:true" json:"active"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
