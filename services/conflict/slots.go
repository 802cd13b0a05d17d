package conflict

import (
	"fmt"
	"time"

	bookingModel "office-portal/models/booking"

	"github.com/jinzhu/now"
)

// Working window for suggested slots: 08:00 inclusive to 20:00 exclusive.
const (
	workingDayStartHour = 8
	workingDayEndHour   = 20
	maxSuggestedSlots   = 5
)

// Slot is a suggested free interval of exactly the requested duration.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FindRoomSlots suggests up to 5 free slots of durationMinutes for the room on
// the given calendar day. Suggestions only; never authoritative for acceptance.
func (s *Service) FindRoomSlots(roomID uint, date time.Time, durationMinutes int) ([]Slot, error) {
	dayStart := now.With(date).BeginningOfDay()
	windowOpen := dayStart.Add(workingDayStartHour * time.Hour)
	windowClose := dayStart.Add(workingDayEndHour * time.Hour)

	var meetings []bookingModel.RoomMeeting
	err := s.DB.
		Where("room_id = ? AND start_time < ? AND end_time > ?", roomID, windowClose, windowOpen).
		Order("start_time ASC").
		Find(&meetings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query room meetings: %w", err)
	}

	reservations := make([]reservedInterval, 0, len(meetings))
	for _, m := range meetings {
		reservations = append(reservations, reservedInterval{start: m.StartTime, end: m.EndTime})
	}
	return sweepSlots(reservations, windowOpen, windowClose, durationMinutes), nil
}

// FindVehicleSlots suggests up to 5 free slots of durationMinutes for the
// vehicle on the given calendar day. Open-ended bookings block the rest of
// the working window.
func (s *Service) FindVehicleSlots(vehicleID uint, date time.Time, durationMinutes int) ([]Slot, error) {
	dayStart := now.With(date).BeginningOfDay()
	windowOpen := dayStart.Add(workingDayStartHour * time.Hour)
	windowClose := dayStart.Add(workingDayEndHour * time.Hour)

	var bookings []bookingModel.VehicleBooking
	err := s.DB.
		Where("vehicle_id = ? AND returned = ?", vehicleID, false).
		Where("start_time < ?", windowClose).
		Where("end_time IS NULL OR end_time > ?", windowOpen).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicle bookings: %w", err)
	}

	reservations := make([]reservedInterval, 0, len(bookings))
	for _, b := range bookings {
		end := windowClose
		if b.EndTime != nil {
			end = *b.EndTime
		}
		reservations = append(reservations, reservedInterval{start: b.StartTime, end: end})
	}
	return sweepSlots(reservations, windowOpen, windowClose, durationMinutes), nil
}

type reservedInterval struct {
	start time.Time
	end   time.Time
}

// sweepSlots walks the day forward from windowOpen. For each reservation the
// gap between the cursor and the reservation start is tested against the
// requested duration; matching gaps emit one fixed-length slot at the cursor.
// The cursor never moves backward, so nested reservations that end before the
// cursor leave it unchanged. reservations must be sorted by start time.
func sweepSlots(reservations []reservedInterval, windowOpen, windowClose time.Time, durationMinutes int) []Slot {
	duration := time.Duration(durationMinutes) * time.Minute
	slots := make([]Slot, 0, maxSuggestedSlots)

	cursor := windowOpen
	for _, r := range reservations {
		if len(slots) >= maxSuggestedSlots {
			return slots
		}
		if r.start.Sub(cursor) >= duration {
			slots = append(slots, Slot{Start: cursor, End: cursor.Add(duration)})
		}
		if r.end.After(cursor) {
			cursor = r.end
		}
	}

	if len(slots) < maxSuggestedSlots && windowClose.Sub(cursor) >= duration {
		slots = append(slots, Slot{Start: cursor, End: cursor.Add(duration)})
	}
	return slots
}
