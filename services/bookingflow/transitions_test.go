package bookingflow

import (
	"testing"

	bookingModel "office-portal/models/booking"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		status  bookingModel.RequestStatus
		action  Action
		allowed bool
	}{
		{bookingModel.StatusPending, ActionApprove, true},
		{bookingModel.StatusPending, ActionReject, true},
		{bookingModel.StatusPending, ActionCounter, true},
		{bookingModel.StatusPending, ActionCancel, true},
		{bookingModel.StatusPending, ActionAcceptCounter, false},
		{bookingModel.StatusPending, ActionRejectCounter, false},

		{bookingModel.StatusCounterProposed, ActionAcceptCounter, true},
		{bookingModel.StatusCounterProposed, ActionRejectCounter, true},
		{bookingModel.StatusCounterProposed, ActionCancel, true},
		{bookingModel.StatusCounterProposed, ActionApprove, false},
		{bookingModel.StatusCounterProposed, ActionCounter, false},

		// counter_rejected re-opens for approve/reject but not another counter.
		{bookingModel.StatusCounterRejected, ActionApprove, true},
		{bookingModel.StatusCounterRejected, ActionReject, true},
		{bookingModel.StatusCounterRejected, ActionCancel, true},
		{bookingModel.StatusCounterRejected, ActionCounter, false},
		{bookingModel.StatusCounterRejected, ActionAcceptCounter, false},

		{bookingModel.StatusRejected, ActionCancel, true},
		{bookingModel.StatusRejected, ActionApprove, false},

		// Terminal statuses accept nothing.
		{bookingModel.StatusApproved, ActionApprove, false},
		{bookingModel.StatusApproved, ActionCancel, false},
		{bookingModel.StatusCounterAccepted, ActionCancel, false},
		{bookingModel.StatusCancelled, ActionApprove, false},
		{bookingModel.StatusCancelled, ActionCancel, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, canTransition(tc.status, tc.action),
			"status=%s action=%s", tc.status, tc.action)
	}
}

func TestMaterializedAndCancelledStatusesAcceptNoAction(t *testing.T) {
	actions := []Action{ActionApprove, ActionReject, ActionCounter, ActionAcceptCounter, ActionRejectCounter, ActionCancel}
	closed := []bookingModel.RequestStatus{
		bookingModel.StatusApproved,
		bookingModel.StatusCounterAccepted,
		bookingModel.StatusCancelled,
	}
	for _, status := range closed {
		for _, action := range actions {
			assert.False(t, canTransition(status, action), "status=%s action=%s", status, action)
		}
	}
}
