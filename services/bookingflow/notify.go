package bookingflow

import (
	"fmt"

	bookingModel "office-portal/models/booking"
	roomModel "office-portal/models/room"
	userModel "office-portal/models/user"
	vehicleModel "office-portal/models/vehicle"
	"office-portal/services/notifier"
	"office-portal/types"
)

// audience selects who a fan-out reaches.
type audience struct {
	roles   []string
	userIDs []uint
}

var (
	audienceStaff       = audience{roles: []string{"admin", "secretary"}}
	audienceSecretaries = audience{roles: []string{"secretary"}}
)

// notify is the single fan-out routine for the state machine. It resolves the
// audience to users and delivers one templated notification per recipient,
// plus optional email-only CC entries. Delivery failures are already swallowed
// by the dispatcher.
func (s *Service) notify(aud audience, templateType string, variables map[string]string, cc []notifier.Recipient) {
	var users []userModel.User
	query := s.DB.Where("active = ?", true)
	switch {
	case len(aud.roles) > 0 && len(aud.userIDs) > 0:
		query = query.Where("role IN ? OR id IN ?", aud.roles, aud.userIDs)
	case len(aud.roles) > 0:
		query = query.Where("role IN ?", aud.roles)
	case len(aud.userIDs) > 0:
		query = query.Where("id IN ?", aud.userIDs)
	default:
		return
	}
	if err := query.Find(&users).Error; err != nil {
		// Fan-out is best-effort; the state change already committed.
		return
	}

	for _, u := range users {
		s.Notifier.Send(templateType, notifier.Recipient{UserID: u.ID, Email: u.Email, Name: u.Name}, variables)
	}
	for _, recipient := range cc {
		s.Notifier.Send(templateType, recipient, variables)
	}
}

// notifyDecision notifies the requester plus all secretaries about an admin
// decision, merging the per-decision variables with the shared request fields.
func (s *Service) notifyDecision(request *bookingModel.BookingRequest, admin types.AuthUser, templateType string, extra map[string]string) {
	variables := map[string]string{
		"requester_name": request.RequesterName,
		"request_type":   string(request.RequestType),
		"resource_name":  s.resourceName(request),
		"start":          request.RequestedStart.Format("2006-01-02 15:04"),
		"admin_name":     admin.Name,
		"request_id":     fmt.Sprintf("%d", request.ID),
	}
	for key, value := range extra {
		variables[key] = value
	}

	s.notify(audience{
		roles:   audienceSecretaries.roles,
		userIDs: []uint{request.RequesterID},
	}, templateType, variables, nil)
}

func (s *Service) resourceName(request *bookingModel.BookingRequest) string {
	if request.RequestType == bookingModel.RequestTypeRoom {
		if request.Room != nil {
			return request.Room.Name
		}
		if request.RoomID != nil {
			var room roomModel.Room
			if err := s.DB.First(&room, *request.RoomID).Error; err == nil {
				return room.Name
			}
		}
		return "room"
	}
	if request.Vehicle != nil {
		return request.Vehicle.Name
	}
	if request.VehicleID != nil {
		var vehicle vehicleModel.Vehicle
		if err := s.DB.First(&vehicle, *request.VehicleID).Error; err == nil {
			return vehicle.Name
		}
	}
	return "vehicle"
}

// describeInterval renders the resource and start of either the original or
// the counter side of a request for before/after notification text.
func (s *Service) describeInterval(request *bookingModel.BookingRequest, counter bool) string {
	roomID, vehicleID, start, _ := effectiveFields(request, counter)

	name := s.resourceName(request)
	if counter {
		if request.RequestType == bookingModel.RequestTypeRoom && roomID != nil {
			var room roomModel.Room
			if err := s.DB.First(&room, *roomID).Error; err == nil {
				name = room.Name
			}
		}
		if request.RequestType == bookingModel.RequestTypeVehicle && vehicleID != nil {
			var vehicle vehicleModel.Vehicle
			if err := s.DB.First(&vehicle, *vehicleID).Error; err == nil {
				name = vehicle.Name
			}
		}
	}
	return fmt.Sprintf("%s at %s", name, start.Format("2006-01-02 15:04"))
}
