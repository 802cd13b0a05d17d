package bookingflow

import (
	"time"

	bookingModel "office-portal/models/booking"

	"gorm.io/gorm"
)

// Room meetings need an end time; requests may omit one.
const defaultMeetingDuration = time.Hour

// effectiveFields resolves the resource and interval a confirmed booking will
// use. With useCounter, counter fields win and nil counter fields fall back
// to the original request.
func effectiveFields(request *bookingModel.BookingRequest, useCounter bool) (roomID, vehicleID *uint, start time.Time, end *time.Time) {
	roomID = request.RoomID
	vehicleID = request.VehicleID
	start = request.RequestedStart
	end = request.RequestedEnd

	if useCounter {
		if request.CounterRoomID != nil {
			roomID = request.CounterRoomID
		}
		if request.CounterVehicleID != nil {
			vehicleID = request.CounterVehicleID
		}
		if request.CounterStart != nil {
			start = *request.CounterStart
		}
		if request.CounterEnd != nil {
			end = request.CounterEnd
		}
	}
	return roomID, vehicleID, start, end
}

// checkMaterializationConflicts runs the conflict checker against the fields
// the booking would materialize with. Returns a ConflictError when the target
// interval is taken.
func (s *Service) checkMaterializationConflicts(request *bookingModel.BookingRequest, useCounter bool) error {
	roomID, vehicleID, start, end := effectiveFields(request, useCounter)

	if request.RequestType == bookingModel.RequestTypeRoom {
		meetingEnd := start.Add(defaultMeetingDuration)
		if end != nil {
			meetingEnd = *end
		}
		conflicts, err := s.Conflicts.FindRoomConflicts(*roomID, start, meetingEnd, nil)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}
		return nil
	}

	conflicts, err := s.Conflicts.FindVehicleConflicts(*vehicleID, start, end, nil)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

// materialize creates the confirmed RoomMeeting or VehicleBooking inside the
// caller's transaction.
func (s *Service) materialize(tx *gorm.DB, request *bookingModel.BookingRequest, useCounter bool) error {
	roomID, vehicleID, start, end := effectiveFields(request, useCounter)

	if request.RequestType == bookingModel.RequestTypeRoom {
		title := "Meeting"
		if request.Title != nil && *request.Title != "" {
			title = *request.Title
		}
		meetingEnd := start.Add(defaultMeetingDuration)
		if end != nil {
			meetingEnd = *end
		}
		meeting := bookingModel.RoomMeeting{
			RoomID:      *roomID,
			Title:       title,
			Description: request.Description,
			StartTime:   start,
			EndTime:     meetingEnd,
			CreatedBy:   request.RequesterEmail,
		}
		return tx.Create(&meeting).Error
	}

	driver := request.RequesterName
	if request.Driver != nil && *request.Driver != "" {
		driver = *request.Driver
	}
	vehicleBooking := bookingModel.VehicleBooking{
		VehicleID:   *vehicleID,
		Driver:      driver,
		Destination: request.Destination,
		Purpose:     request.Purpose,
		StartTime:   start,
		EndTime:     end,
		CreatedBy:   request.RequesterEmail,
	}
	return tx.Create(&vehicleBooking).Error
}
