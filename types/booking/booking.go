package booking

import (
	"fmt"
	"time"
)

// SubmitRequest is the payload for submitting a booking request.
type SubmitRequest struct {
	RequestType string  `json:"request_type"`
	RoomID      *uint   `json:"room_id,omitempty"`
	VehicleID   *uint   `json:"vehicle_id,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Driver      *string `json:"driver,omitempty"`
	Destination *string `json:"destination,omitempty"`
	Purpose     *string `json:"purpose,omitempty"`

	RequestedStart time.Time  `json:"requested_start"`
	RequestedEnd   *time.Time `json:"requested_end,omitempty"`
}

func (r SubmitRequest) Validate() error {
	if r.RequestType != "room" && r.RequestType != "vehicle" {
		return fmt.Errorf("request_type must be 'room' or 'vehicle'")
	}
	if r.RequestType == "room" && r.RoomID == nil {
		return fmt.Errorf("room_id is required for room requests")
	}
	if r.RequestType == "vehicle" && r.VehicleID == nil {
		return fmt.Errorf("vehicle_id is required for vehicle requests")
	}
	if r.RequestedStart.IsZero() {
		return fmt.Errorf("requested_start is required")
	}
	return nil
}

// ApproveRequest is the payload for approving a booking request.
type ApproveRequest struct {
	AdminNotes *string `json:"admin_notes,omitempty"`
}

// RejectRequest is the payload for rejecting a booking request.
type RejectRequest struct {
	RejectionReason string  `json:"rejection_reason"`
	AdminNotes      *string `json:"admin_notes,omitempty"`
}

func (r RejectRequest) Validate() error {
	if r.RejectionReason == "" {
		return fmt.Errorf("rejection_reason is required")
	}
	return nil
}

// CounterRequest is the payload for counter-proposing an alternative.
// Nil fields mean "unchanged from the original request".
type CounterRequest struct {
	CounterRoomID    *uint      `json:"counter_room_id,omitempty"`
	CounterVehicleID *uint      `json:"counter_vehicle_id,omitempty"`
	CounterStart     *time.Time `json:"counter_start,omitempty"`
	CounterEnd       *time.Time `json:"counter_end,omitempty"`
	CounterReason    string     `json:"counter_reason"`
}

func (r CounterRequest) Validate() error {
	if r.CounterReason == "" {
		return fmt.Errorf("counter_reason is required")
	}
	return nil
}

// MeetingRequest is the payload for creating or updating a room meeting
// directly, and for the room availability dry-run.
type MeetingRequest struct {
	RoomID      uint      `json:"room_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

func (r MeetingRequest) Validate() error {
	if r.RoomID == 0 {
		return fmt.Errorf("room_id is required")
	}
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return fmt.Errorf("start_time and end_time are required")
	}
	if !r.EndTime.After(r.StartTime) {
		return fmt.Errorf("end_time must be after start_time")
	}
	return nil
}

// VehicleBookingRequest is the payload for creating or updating a vehicle
// booking directly, and for the vehicle availability dry-run. A nil EndTime
// means open-ended.
type VehicleBookingRequest struct {
	VehicleID     uint       `json:"vehicle_id"`
	Driver        string     `json:"driver"`
	Destination   *string    `json:"destination,omitempty"`
	Purpose       *string    `json:"purpose,omitempty"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	OdometerStart *int       `json:"odometer_start,omitempty"`
}

func (r VehicleBookingRequest) Validate() error {
	if r.VehicleID == 0 {
		return fmt.Errorf("vehicle_id is required")
	}
	if r.Driver == "" {
		return fmt.Errorf("driver is required")
	}
	if r.StartTime.IsZero() {
		return fmt.Errorf("start_time is required")
	}
	if r.EndTime != nil && !r.EndTime.After(r.StartTime) {
		return fmt.Errorf("end_time must be after start_time")
	}
	return nil
}

// ReturnVehicleRequest closes out a vehicle booking.
type ReturnVehicleRequest struct {
	OdometerEnd *int `json:"odometer_end,omitempty"`
}
