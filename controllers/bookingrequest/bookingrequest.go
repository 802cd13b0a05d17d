package bookingrequest

import (
	"errors"
	"strconv"

	"office-portal/logger"
	"office-portal/middleware"
	"office-portal/services/bookingflow"
	"office-portal/types"
	bookingTypes "office-portal/types/booking"

	"github.com/gofiber/fiber/v2"
)

// BookingRequestController exposes the request lifecycle over HTTP. All state
// decisions live in the bookingflow service; this layer parses, authorizes by
// role at the route level, and maps errors to the response taxonomy.
type BookingRequestController struct {
	Flow *bookingflow.Service
}

// NewBookingRequestController creates a new booking request controller
func NewBookingRequestController(flow *bookingflow.Service) *BookingRequestController {
	return &BookingRequestController{Flow: flow}
}

// Index lists booking requests, scoped to the caller's own unless the caller
// is admin or secretary.
func (bc *BookingRequestController) Index(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	requests, err := bc.Flow.List(authUser)
	if err != nil {
		logger.Error("Failed to list booking requests", err)
		return serverError(c)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking requests loaded",
		Data:    requests,
	})
}

// Show returns one booking request.
func (bc *BookingRequestController) Show(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid booking request id")
	}

	request, err := bc.Flow.Get(authUser, id)
	if err != nil {
		return respondFlowError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking request loaded",
		Data:    request,
	})
}

// Store submits a new booking request.
func (bc *BookingRequestController) Store(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req bookingTypes.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return badRequest(c, "Invalid request body")
	}

	request, err := bc.Flow.Submit(authUser, req)
	if err != nil {
		return respondFlowError(c, err)
	}

	logger.Success("Booking request submitted with ID: " + strconv.FormatUint(uint64(request.ID), 10))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Booking request submitted",
		Data:    request,
	})
}

// Approve confirms a pending or counter-rejected request.
func (bc *BookingRequestController) Approve(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid booking request id")
	}

	var req bookingTypes.ApproveRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return badRequest(c, "Invalid request body")
	}

	request, err := bc.Flow.Approve(authUser, id, req)
	if err != nil {
		return respondFlowError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking request approved",
		Data:    request,
	})
}

// Reject declines a pending or counter-rejected request with a reason.
func (bc *BookingRequestController) Reject(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid booking request id")
	}

	var req bookingTypes.RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	request, err := bc.Flow.Reject(authUser, id, req)
	if err != nil {
		return respondFlowError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking request rejected",
		Data:    request,
	})
}

// Counter proposes an alternative resource or time for a pending request.
func (bc *BookingRequestController) Counter(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid booking request id")
	}

	var req bookingTypes.CounterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	request, err := bc.Flow.Counter(authUser, id, req)
	if err != nil {
		return respondFlowError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Counter-proposal sent",
		Data:    request,
	})
}

// AcceptCounter lets the requester take the proposed alternative.
func (bc *BookingRequestController) AcceptCounter(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid booking request id")
	}

	request, err := bc.Flow.AcceptCounter(authUser, id)
	if err != nil {
		return respondFlowError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Counter-proposal accepted",
		Data:    request,
	})
}

// RejectCounter declines the proposed alternative and re-opens the request.
func (bc *BookingRequestController) RejectCounter(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid booking request id")
	}

	request, err := bc.Flow.RejectCounter(authUser, id)
	if err != nil {
		return respondFlowError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Counter-proposal declined",
		Data:    request,
	})
}

// Cancel withdraws a request that has not produced a booking.
func (bc *BookingRequestController) Cancel(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid booking request id")
	}

	request, err := bc.Flow.Cancel(authUser, id)
	if err != nil {
		return respondFlowError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking request cancelled",
		Data:    request,
	})
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
		Status:  fiber.StatusUnauthorized,
		Message: "Invalid user claims",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
		Status:  fiber.StatusBadRequest,
		Message: message,
	})
}

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
	})
}

// respondFlowError maps booking flow errors onto the response taxonomy.
func respondFlowError(c *fiber.Ctx, err error) error {
	var validationErr *bookingflow.ValidationError
	var conflictErr *bookingflow.ConflictError

	switch {
	case errors.Is(err, bookingflow.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Booking request not found",
		})
	case errors.Is(err, bookingflow.ErrAlreadyHandled):
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Request already handled",
		})
	case errors.Is(err, bookingflow.ErrNoChanges):
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "No changes proposed",
		})
	case errors.Is(err, bookingflow.ErrNotOwner), errors.Is(err, bookingflow.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Not allowed",
		})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: validationErr.Message,
		})
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusConflict).JSON(types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: "Reservation conflicts with existing bookings",
			Data:    fiber.Map{"conflicts": conflictErr.Conflicts},
		})
	default:
		logger.Error("Booking flow operation failed", err)
		return serverError(c)
	}
}
