package booking

import (
	"time"

	roomModel "office-portal/models/room"
	userModel "office-portal/models/user"
	vehicleModel "office-portal/models/vehicle"
)

// BookingRequest represents a pending or resolved ask for a room or vehicle.
// Exactly one of RoomID/VehicleID is set, matching RequestType. Counter fields
// stay nil until an admin counter-proposes.
type BookingRequest struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	RequestType RequestType `gorm:"type:varchar(20);not null;index" json:"request_type"`

	// Foreign key for requester relationship
	RequesterID    uint           `gorm:"not null;index" json:"requester_id"`
	Requester      userModel.User `gorm:"foreignKey:RequesterID" json:"requester"`
	RequesterEmail string         `gorm:"type:varchar(255);not null" json:"requester_email"`
	RequesterName  string         `gorm:"type:varchar(255);not null" json:"requester_name"`

	RoomID    *uint                 `gorm:"index" json:"room_id,omitempty"`
	Room      *roomModel.Room       `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	VehicleID *uint                 `gorm:"index" json:"vehicle_id,omitempty"`
	Vehicle   *vehicleModel.Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`

	// Room request fields
	Title       *string `gorm:"type:varchar(255)" json:"title,omitempty"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	// Vehicle request fields
	Driver      *string `gorm:"type:varchar(255)" json:"driver,omitempty"`
	Destination *string `gorm:"type:varchar(255)" json:"destination,omitempty"`
	Purpose     *string `gorm:"type:text" json:"purpose,omitempty"`

	RequestedStart time.Time  `gorm:"not null;index" json:"requested_start"`
	RequestedEnd   *time.Time `json:"requested_end,omitempty"`

	Status RequestStatus `gorm:"type:varchar(50);not null;default:'pending';index" json:"status"`

	// Admin response fields
	AdminID         *uint   `gorm:"index" json:"admin_id,omitempty"`
	AdminNotes      *string `gorm:"type:text" json:"admin_notes,omitempty"`
	RejectionReason *string `gorm:"type:text" json:"rejection_reason,omitempty"`

	// Counter-proposal fields, populated only when status reaches counter_proposed
	CounterRoomID    *uint      `json:"counter_room_id,omitempty"`
	CounterVehicleID *uint      `json:"counter_vehicle_id,omitempty"`
	CounterStart     *time.Time `json:"counter_start,omitempty"`
	CounterEnd       *time.Time `json:"counter_end,omitempty"`
	CounterReason    *string    `gorm:"type:text" json:"counter_reason,omitempty"`

	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the BookingRequest model
func (BookingRequest) TableName() string {
	return "booking_requests"
}

// ResourceID returns the requested room or vehicle id depending on type.
func (br *BookingRequest) ResourceID() uint {
	if br.RequestType == RequestTypeRoom && br.RoomID != nil {
		return *br.RoomID
	}
	if br.RequestType == RequestTypeVehicle && br.VehicleID != nil {
		return *br.VehicleID
	}
	return 0
}
