package bookingflow

import (
	"errors"
	"fmt"
	"time"

	bookingModel "office-portal/models/booking"
	roomModel "office-portal/models/room"
	vehicleModel "office-portal/models/vehicle"
	"office-portal/services/audit"
	"office-portal/services/conflict"
	"office-portal/services/notifier"
	"office-portal/types"
	bookingTypes "office-portal/types/booking"

	"gorm.io/gorm"
)

// Service runs the booking request lifecycle: submission, the admin decision
// (approve/reject/counter), the requester's counter response, cancellation,
// and materialization of confirmed reservations. State changes commit first;
// notifications and audit records follow best-effort.
type Service struct {
	DB        *gorm.DB
	Conflicts *conflict.Service
	Notifier  *notifier.Dispatcher
	Audit     *audit.Service
}

// NewService creates a new booking flow service
func NewService(db *gorm.DB, conflicts *conflict.Service, dispatcher *notifier.Dispatcher, auditSvc *audit.Service) *Service {
	return &Service{DB: db, Conflicts: conflicts, Notifier: dispatcher, Audit: auditSvc}
}

// Submit creates a new request in pending and notifies the back office.
func (s *Service) Submit(actor types.AuthUser, req bookingTypes.SubmitRequest) (*bookingModel.BookingRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Field: "request", Message: err.Error()}
	}

	request := bookingModel.BookingRequest{
		RequestType:    bookingModel.RequestType(req.RequestType),
		RequesterID:    actor.ID,
		RequesterEmail: actor.Email,
		RequesterName:  actor.Name,
		Title:          req.Title,
		Description:    req.Description,
		Driver:         req.Driver,
		Destination:    req.Destination,
		Purpose:        req.Purpose,
		RequestedStart: req.RequestedStart,
		RequestedEnd:   req.RequestedEnd,
		Status:         bookingModel.StatusPending,
	}

	var resourceName string
	if request.RequestType == bookingModel.RequestTypeRoom {
		var room roomModel.Room
		if err := s.DB.First(&room, *req.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &ValidationError{Field: "room_id", Message: "unknown room"}
			}
			return nil, fmt.Errorf("failed to load room: %w", err)
		}
		request.RoomID = req.RoomID
		resourceName = room.Name
	} else {
		var vehicle vehicleModel.Vehicle
		if err := s.DB.First(&vehicle, *req.VehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &ValidationError{Field: "vehicle_id", Message: "unknown vehicle"}
			}
			return nil, fmt.Errorf("failed to load vehicle: %w", err)
		}
		request.VehicleID = req.VehicleID
		resourceName = vehicle.Name
	}

	if err := s.DB.Create(&request).Error; err != nil {
		return nil, fmt.Errorf("failed to create booking request: %w", err)
	}

	s.notify(audienceStaff, notifier.TemplateRequestSubmitted, map[string]string{
		"requester_name": actor.Name,
		"request_type":   string(request.RequestType),
		"resource_name":  resourceName,
		"start":          request.RequestedStart.Format("2006-01-02 15:04"),
	}, []notifier.Recipient{{Email: actor.Email, Name: actor.Name}})

	s.Audit.Append(actor.ID, actor.Email, "booking_request.submit", "booking_request", request.ID, map[string]interface{}{
		"request_type": request.RequestType,
		"resource":     resourceName,
		"start":        request.RequestedStart,
	})

	return &request, nil
}

// Approve confirms the request as submitted and materializes the reservation
// from the original fields.
func (s *Service) Approve(actor types.AuthUser, requestID uint, req bookingTypes.ApproveRequest) (*bookingModel.BookingRequest, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	request, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	if !canTransition(request.Status, ActionApprove) {
		return nil, ErrAlreadyHandled
	}

	if err := s.checkMaterializationConflicts(request, false); err != nil {
		return nil, err
	}

	respondedAt := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		request.Status = bookingModel.StatusApproved
		request.AdminID = &actor.ID
		request.AdminNotes = req.AdminNotes
		request.RespondedAt = &respondedAt
		if err := tx.Save(request).Error; err != nil {
			return err
		}
		return s.materialize(tx, request, false)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to approve booking request: %w", err)
	}

	notes := ""
	if req.AdminNotes != nil {
		notes = *req.AdminNotes
	}
	s.notifyDecision(request, actor, notifier.TemplateRequestApproved, map[string]string{
		"admin_notes": notes,
	})

	s.Audit.Append(actor.ID, actor.Email, "booking_request.approve", "booking_request", request.ID, map[string]interface{}{
		"requester": request.RequesterEmail,
	})

	return request, nil
}

// Reject declines the request with a mandatory reason.
func (s *Service) Reject(actor types.AuthUser, requestID uint, req bookingTypes.RejectRequest) (*bookingModel.BookingRequest, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Field: "rejection_reason", Message: err.Error()}
	}

	request, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	if !canTransition(request.Status, ActionReject) {
		return nil, ErrAlreadyHandled
	}

	respondedAt := time.Now()
	request.Status = bookingModel.StatusRejected
	request.AdminID = &actor.ID
	request.AdminNotes = req.AdminNotes
	request.RejectionReason = &req.RejectionReason
	request.RespondedAt = &respondedAt
	if err := s.DB.Save(request).Error; err != nil {
		return nil, fmt.Errorf("failed to reject booking request: %w", err)
	}

	s.notifyDecision(request, actor, notifier.TemplateRequestRejected, map[string]string{
		"rejection_reason": req.RejectionReason,
	})

	s.Audit.Append(actor.ID, actor.Email, "booking_request.reject", "booking_request", request.ID, map[string]interface{}{
		"requester": request.RequesterEmail,
		"reason":    req.RejectionReason,
	})

	return request, nil
}

// Counter proposes an alternative resource and/or start time. At least one
// proposed field must actually differ from the original request.
func (s *Service) Counter(actor types.AuthUser, requestID uint, req bookingTypes.CounterRequest) (*bookingModel.BookingRequest, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Field: "counter_reason", Message: err.Error()}
	}

	request, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	if !canTransition(request.Status, ActionCounter) {
		return nil, ErrAlreadyHandled
	}

	// A proposal can only swap the resource within the request's own type.
	// materialize never reads a counter room on a vehicle request (or the
	// reverse), so accepting one would silently book the original resource.
	if request.RequestType == bookingModel.RequestTypeRoom && req.CounterVehicleID != nil {
		return nil, &ValidationError{Field: "counter_vehicle_id", Message: "cannot propose a vehicle for a room request"}
	}
	if request.RequestType == bookingModel.RequestTypeVehicle && req.CounterRoomID != nil {
		return nil, &ValidationError{Field: "counter_room_id", Message: "cannot propose a room for a vehicle request"}
	}

	if !counterChangesAnything(request, req) {
		return nil, ErrNoChanges
	}

	respondedAt := time.Now()
	request.Status = bookingModel.StatusCounterProposed
	request.AdminID = &actor.ID
	request.CounterRoomID = req.CounterRoomID
	request.CounterVehicleID = req.CounterVehicleID
	request.CounterStart = req.CounterStart
	request.CounterEnd = req.CounterEnd
	request.CounterReason = &req.CounterReason
	request.RespondedAt = &respondedAt
	if err := s.DB.Save(request).Error; err != nil {
		return nil, fmt.Errorf("failed to counter booking request: %w", err)
	}

	s.notifyDecision(request, actor, notifier.TemplateCounterProposed, map[string]string{
		"counter_reason":   req.CounterReason,
		"counter_details":  s.describeInterval(request, true),
		"original_details": s.describeInterval(request, false),
	})

	s.Audit.Append(actor.ID, actor.Email, "booking_request.counter", "booking_request", request.ID, map[string]interface{}{
		"requester":     request.RequesterEmail,
		"counter_start": req.CounterStart,
	})

	return request, nil
}

// AcceptCounter lets the requester take the admin's alternative. The booking
// materializes from the counter fields, falling back to the original where a
// counter field is nil.
func (s *Service) AcceptCounter(actor types.AuthUser, requestID uint) (*bookingModel.BookingRequest, error) {
	request, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != actor.ID {
		return nil, ErrNotOwner
	}
	if !canTransition(request.Status, ActionAcceptCounter) {
		return nil, ErrAlreadyHandled
	}

	if err := s.checkMaterializationConflicts(request, true); err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		request.Status = bookingModel.StatusCounterAccepted
		if err := tx.Save(request).Error; err != nil {
			return err
		}
		return s.materialize(tx, request, true)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to accept counter-proposal: %w", err)
	}

	s.notify(audienceStaff, notifier.TemplateCounterAccepted, map[string]string{
		"requester_name": request.RequesterName,
		"request_id":     fmt.Sprintf("%d", request.ID),
	}, nil)

	s.Audit.Append(actor.ID, actor.Email, "booking_request.accept_counter", "booking_request", request.ID, nil)

	return request, nil
}

// RejectCounter declines the admin's alternative. The request re-opens for
// another admin decision.
func (s *Service) RejectCounter(actor types.AuthUser, requestID uint) (*bookingModel.BookingRequest, error) {
	request, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != actor.ID {
		return nil, ErrNotOwner
	}
	if !canTransition(request.Status, ActionRejectCounter) {
		return nil, ErrAlreadyHandled
	}

	request.Status = bookingModel.StatusCounterRejected
	if err := s.DB.Save(request).Error; err != nil {
		return nil, fmt.Errorf("failed to reject counter-proposal: %w", err)
	}

	s.notify(audienceStaff, notifier.TemplateCounterRejected, map[string]string{
		"requester_name": request.RequesterName,
		"request_id":     fmt.Sprintf("%d", request.ID),
	}, nil)

	s.Audit.Append(actor.ID, actor.Email, "booking_request.reject_counter", "booking_request", request.ID, nil)

	return request, nil
}

// Cancel withdraws the request. Allowed for the requester or an admin, from
// any status that has not produced a confirmed booking.
func (s *Service) Cancel(actor types.AuthUser, requestID uint) (*bookingModel.BookingRequest, error) {
	request, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if !canTransition(request.Status, ActionCancel) {
		return nil, ErrAlreadyHandled
	}

	request.Status = bookingModel.StatusCancelled
	if err := s.DB.Save(request).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel booking request: %w", err)
	}

	s.Audit.Append(actor.ID, actor.Email, "booking_request.cancel", "booking_request", request.ID, nil)

	return request, nil
}

// Get returns one request, visible to its requester and to back-office roles.
func (s *Service) Get(actor types.AuthUser, requestID uint) (*bookingModel.BookingRequest, error) {
	request, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != actor.ID && !actor.IsStaff() {
		return nil, ErrForbidden
	}
	return request, nil
}

// List returns requests newest first, scoped to the caller's own unless the
// caller is admin or secretary.
func (s *Service) List(actor types.AuthUser) ([]bookingModel.BookingRequest, error) {
	query := s.DB.Preload("Room").Preload("Vehicle")
	if !actor.IsStaff() {
		query = query.Where("requester_id = ?", actor.ID)
	}

	var requests []bookingModel.BookingRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list booking requests: %w", err)
	}
	return requests, nil
}

func (s *Service) loadRequest(requestID uint) (*bookingModel.BookingRequest, error) {
	var request bookingModel.BookingRequest
	if err := s.DB.Preload("Room").Preload("Vehicle").First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load booking request: %w", err)
	}
	return &request, nil
}

// counterChangesAnything reports whether the proposal differs from the
// original in resource or start time. Nil counter fields mean "unchanged".
func counterChangesAnything(request *bookingModel.BookingRequest, req bookingTypes.CounterRequest) bool {
	if req.CounterRoomID != nil && (request.RoomID == nil || *req.CounterRoomID != *request.RoomID) {
		return true
	}
	if req.CounterVehicleID != nil && (request.VehicleID == nil || *req.CounterVehicleID != *request.VehicleID) {
		return true
	}
	if req.CounterStart != nil && !req.CounterStart.Equal(request.RequestedStart) {
		return true
	}
	return false
}
