package notifier

// Notification template types consumed by the booking flow and auth.
const (
	TemplateRequestSubmitted = "booking_request_submitted"
	TemplateRequestApproved  = "booking_request_approved"
	TemplateRequestRejected  = "booking_request_rejected"
	TemplateCounterProposed  = "booking_counter_proposed"
	TemplateCounterAccepted  = "booking_counter_accepted"
	TemplateCounterRejected  = "booking_counter_rejected"
	TemplateTwoFactorReset   = "two_factor_reset"
)

type template struct {
	Subject string
	Body    string
}

var templates = map[string]template{
	TemplateRequestSubmitted: {
		Subject: "New {request_type} booking request from {requester_name}",
		Body:    "{requester_name} requested a {request_type} booking for {resource_name} starting {start}. Review it in the portal.",
	},
	TemplateRequestApproved: {
		Subject: "Your {request_type} booking request was approved",
		Body:    "Your request for {resource_name} starting {start} was approved by {admin_name}. {admin_notes}",
	},
	TemplateRequestRejected: {
		Subject: "Your {request_type} booking request was rejected",
		Body:    "Your request for {resource_name} starting {start} was rejected by {admin_name}. Reason: {rejection_reason}",
	},
	TemplateCounterProposed: {
		Subject: "Counter-proposal for your {request_type} booking request",
		Body:    "{admin_name} proposed an alternative for your request: {counter_details} (was: {original_details}). Reason: {counter_reason}. Accept or decline it in the portal.",
	},
	TemplateCounterAccepted: {
		Subject: "Counter-proposal accepted by {requester_name}",
		Body:    "{requester_name} accepted the counter-proposal for request #{request_id}. The booking has been confirmed.",
	},
	TemplateCounterRejected: {
		Subject: "Counter-proposal declined by {requester_name}",
		Body:    "{requester_name} declined the counter-proposal for request #{request_id}. The request is open for another decision.",
	},
	TemplateTwoFactorReset: {
		Subject: "Two-factor authentication was reset on your account",
		Body:    "An administrator reset two-factor authentication for your account. You can re-enable it from account settings.",
	},
}
