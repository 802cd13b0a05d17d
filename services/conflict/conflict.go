package conflict

import (
	"fmt"
	"time"

	bookingModel "office-portal/models/booking"
	roomModel "office-portal/models/room"
	vehicleModel "office-portal/models/vehicle"

	"gorm.io/gorm"
)

// Service answers interval-overlap questions for rooms and vehicles.
// All methods are read-only.
type Service struct {
	DB *gorm.DB
}

// NewService creates a new conflict service
func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Conflict describes one existing reservation overlapping a queried interval.
// End is nil for open-ended vehicle bookings.
type Conflict struct {
	ID    uint       `json:"id"`
	Label string     `json:"label"`
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// FindRoomConflicts returns room meetings on roomID overlapping the half-open
// interval [start, end). excludeID omits one meeting, used during edit-in-place.
func (s *Service) FindRoomConflicts(roomID uint, start, end time.Time, excludeID *uint) ([]Conflict, error) {
	query := s.DB.Model(&bookingModel.RoomMeeting{}).
		Where("room_id = ? AND start_time < ? AND end_time > ?", roomID, end, start)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var meetings []bookingModel.RoomMeeting
	if err := query.Order("start_time ASC").Find(&meetings).Error; err != nil {
		return nil, fmt.Errorf("failed to query room meetings: %w", err)
	}

	conflicts := make([]Conflict, 0, len(meetings))
	for _, m := range meetings {
		endTime := m.EndTime
		conflicts = append(conflicts, Conflict{
			ID:    m.ID,
			Label: m.Title,
			Start: m.StartTime,
			End:   &endTime,
		})
	}
	return conflicts, nil
}

// FindVehicleConflicts returns unreturned vehicle bookings on vehicleID that
// overlap the queried interval. A nil query end means open-ended, as does a
// nil end on a stored booking; an open-ended booking conflicts with anything
// starting after its start.
func (s *Service) FindVehicleConflicts(vehicleID uint, start time.Time, end *time.Time, excludeID *uint) ([]Conflict, error) {
	query := s.DB.Model(&bookingModel.VehicleBooking{}).
		Where("vehicle_id = ? AND returned = ?", vehicleID, false).
		Where("end_time IS NULL OR end_time > ?", start)
	if end != nil {
		query = query.Where("start_time < ?", *end)
	}
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var bookings []bookingModel.VehicleBooking
	if err := query.Order("start_time ASC").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to query vehicle bookings: %w", err)
	}

	conflicts := make([]Conflict, 0, len(bookings))
	for _, b := range bookings {
		conflicts = append(conflicts, Conflict{
			ID:    b.ID,
			Label: b.Driver,
			Start: b.StartTime,
			End:   b.EndTime,
		})
	}
	return conflicts, nil
}

// FreeRooms returns active rooms with no meeting overlapping [start, end),
// excluding excludeRoomID. Used for alternative-room suggestions.
func (s *Service) FreeRooms(start, end time.Time, excludeRoomID *uint) ([]roomModel.Room, error) {
	query := s.DB.Where("active = ?", true)
	if excludeRoomID != nil {
		query = query.Where("id != ?", *excludeRoomID)
	}

	var rooms []roomModel.Room
	if err := query.Order("name ASC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}

	free := make([]roomModel.Room, 0, len(rooms))
	for _, r := range rooms {
		conflicts, err := s.FindRoomConflicts(r.ID, start, end, nil)
		if err != nil {
			return nil, err
		}
		if len(conflicts) == 0 {
			free = append(free, r)
		}
	}
	return free, nil
}

// FreeVehicles returns active vehicles with no unreturned booking overlapping
// the queried interval, excluding excludeVehicleID.
func (s *Service) FreeVehicles(start time.Time, end *time.Time, excludeVehicleID *uint) ([]vehicleModel.Vehicle, error) {
	query := s.DB.Where("active = ?", true)
	if excludeVehicleID != nil {
		query = query.Where("id != ?", *excludeVehicleID)
	}

	var vehicles []vehicleModel.Vehicle
	if err := query.Order("name ASC").Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}

	free := make([]vehicleModel.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		conflicts, err := s.FindVehicleConflicts(v.ID, start, end, nil)
		if err != nil {
			return nil, err
		}
		if len(conflicts) == 0 {
			free = append(free, v)
		}
	}
	return free, nil
}
