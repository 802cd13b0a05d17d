package booking

type RequestType string

const (
	RequestTypeRoom    RequestType = "room"
	RequestTypeVehicle RequestType = "vehicle"
)

type RequestStatus string

const (
	StatusPending         RequestStatus = "pending"
	StatusApproved        RequestStatus = "approved"
	StatusRejected        RequestStatus = "rejected"
	StatusCounterProposed RequestStatus = "counter_proposed"
	StatusCounterAccepted RequestStatus = "counter_accepted"
	StatusCounterRejected RequestStatus = "counter_rejected"
	StatusCancelled       RequestStatus = "cancelled"
)

// Helper methods for RequestType
func (rt RequestType) String() string {
	return string(rt)
}

func (rt RequestType) IsValid() bool {
	return rt == RequestTypeRoom || rt == RequestTypeVehicle
}

// Helper methods for RequestStatus
func (rs RequestStatus) String() string {
	return string(rs)
}

func (rs RequestStatus) IsValid() bool {
	switch rs {
	case StatusPending, StatusApproved, StatusRejected, StatusCounterProposed,
		StatusCounterAccepted, StatusCounterRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if no further admin or requester action applies.
// counter_rejected is not terminal: the admin may still approve or reject it,
// mirroring pending.
func (rs RequestStatus) IsTerminal() bool {
	switch rs {
	case StatusApproved, StatusRejected, StatusCounterAccepted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsAccepted returns true if the request materialized a booking
func (rs RequestStatus) IsAccepted() bool {
	return rs == StatusApproved || rs == StatusCounterAccepted
}

// CanBeCancelled returns true if the requester may still withdraw the request
func (rs RequestStatus) CanBeCancelled() bool {
	return !rs.IsAccepted() && rs != StatusCancelled
}

// GetAllRequestStatuses returns all valid request statuses
func GetAllRequestStatuses() []RequestStatus {
	return []RequestStatus{
		StatusPending,
		StatusApproved,
		StatusRejected,
		StatusCounterProposed,
		StatusCounterAccepted,
		StatusCounterRejected,
		StatusCancelled,
	}
}
