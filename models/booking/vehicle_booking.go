package booking

import (
	"time"

	vehicleModel "office-portal/models/vehicle"
)

// VehicleBooking is a confirmed vehicle reservation. EndTime may be nil, in
// which case the booking is open-ended and blocks the vehicle until returned.
type VehicleBooking struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	VehicleID uint                 `gorm:"not null;index" json:"vehicle_id"`
	Vehicle   vehicleModel.Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle"`

	Driver      string  `gorm:"type:varchar(255);not null" json:"driver"`
	Destination *string `gorm:"type:varchar(255)" json:"destination,omitempty"`
	Purpose     *string `gorm:"type:text" json:"purpose,omitempty"`

	StartTime time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	OdometerStart *int `gorm:"type:int" json:"odometer_start,omitempty"`
	OdometerEnd   *int `gorm:"type:int" json:"odometer_end,omitempty"`

	// Once set, the booking is inert for conflict purposes.
	Returned bool `gorm:"type:bool;default:false;index" json:"returned"`

	CreatedBy string    `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the VehicleBooking model
func (VehicleBooking) TableName() string {
	return "vehicle_bookings"
}
