package bookingflow

import bookingModel "office-portal/models/booking"

// Action is one state-machine operation on a booking request.
type Action string

const (
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionCounter       Action = "counter"
	ActionAcceptCounter Action = "accept_counter"
	ActionRejectCounter Action = "reject_counter"
	ActionCancel        Action = "cancel"
)

// allowedTransitions is the single source of truth for which statuses each
// action may be applied to. approve and reject also accept counter_rejected,
// which re-opens like pending; counter does not.
var allowedTransitions = map[Action][]bookingModel.RequestStatus{
	ActionApprove:       {bookingModel.StatusPending, bookingModel.StatusCounterRejected},
	ActionReject:        {bookingModel.StatusPending, bookingModel.StatusCounterRejected},
	ActionCounter:       {bookingModel.StatusPending},
	ActionAcceptCounter: {bookingModel.StatusCounterProposed},
	ActionRejectCounter: {bookingModel.StatusCounterProposed},
	ActionCancel: {
		bookingModel.StatusPending,
		bookingModel.StatusRejected,
		bookingModel.StatusCounterProposed,
		bookingModel.StatusCounterRejected,
	},
}

// canTransition reports whether action applies to a request in status.
func canTransition(status bookingModel.RequestStatus, action Action) bool {
	for _, allowed := range allowedTransitions[action] {
		if status == allowed {
			return true
		}
	}
	return false
}
