package vehiclebooking

import (
	"errors"
	"strconv"
	"time"

	"office-portal/logger"
	"office-portal/middleware"
	bookingModel "office-portal/models/booking"
	"office-portal/services/audit"
	"office-portal/services/conflict"
	"office-portal/types"
	bookingTypes "office-portal/types/booking"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// VehicleBookingController handles direct vehicle bookings. Open-ended
// bookings block the vehicle until the return endpoint marks them returned.
type VehicleBookingController struct {
	DB        *gorm.DB
	Conflicts *conflict.Service
	Audit     *audit.Service
}

// NewVehicleBookingController creates a new vehicle booking controller
func NewVehicleBookingController(db *gorm.DB, conflicts *conflict.Service, auditSvc *audit.Service) *VehicleBookingController {
	return &VehicleBookingController{DB: db, Conflicts: conflicts, Audit: auditSvc}
}

// Index lists vehicle bookings. ?active=true restricts to unreturned ones.
func (vc *VehicleBookingController) Index(c *fiber.Ctx) error {
	query := vc.DB.Preload("Vehicle")
	if c.Query("active") == "true" {
		query = query.Where("returned = ?", false)
	}
	if vehicleParam := c.Query("vehicle_id"); vehicleParam != "" {
		query = query.Where("vehicle_id = ?", vehicleParam)
	}

	var bookings []bookingModel.VehicleBooking
	if err := query.Order("start_time DESC").Find(&bookings).Error; err != nil {
		logger.Error("Failed to list vehicle bookings", err)
		return serverError(c)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Vehicle bookings loaded",
		Data:    bookings,
	})
}

// CheckAvailability is the dry-run form of the guard: same conflict check and
// suggestions, no write.
func (vc *VehicleBookingController) CheckAvailability(c *fiber.Ctx) error {
	var req bookingTypes.VehicleBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.VehicleID == 0 || req.StartTime.IsZero() {
		return badRequest(c, "vehicle_id and start_time are required")
	}
	if req.EndTime != nil && !req.EndTime.After(req.StartTime) {
		return badRequest(c, "end_time must be after start_time")
	}

	conflicts, err := vc.Conflicts.FindVehicleConflicts(req.VehicleID, req.StartTime, req.EndTime, nil)
	if err != nil {
		logger.Error("Failed to check vehicle availability", err)
		return serverError(c)
	}
	if len(conflicts) == 0 {
		return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "Vehicle is available",
			Data:    fiber.Map{"available": true},
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Vehicle is not available",
		Data: fiber.Map{
			"available":   false,
			"conflicts":   conflicts,
			"suggestions": vc.buildSuggestions(req),
		},
	})
}

// Store creates a vehicle booking after the conflict guard passes.
func (vc *VehicleBookingController) Store(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req bookingTypes.VehicleBookingRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	var booking bookingModel.VehicleBooking
	err := vc.DB.Transaction(func(tx *gorm.DB) error {
		conflicts, err := vc.Conflicts.FindVehicleConflicts(req.VehicleID, req.StartTime, req.EndTime, nil)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &guardError{conflicts: conflicts}
		}

		booking = bookingModel.VehicleBooking{
			VehicleID:     req.VehicleID,
			Driver:        req.Driver,
			Destination:   req.Destination,
			Purpose:       req.Purpose,
			StartTime:     req.StartTime,
			EndTime:       req.EndTime,
			OdometerStart: req.OdometerStart,
			CreatedBy:     authUser.Email,
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		var guard *guardError
		if errors.As(err, &guard) {
			return vc.respondConflict(c, req, guard.conflicts)
		}
		logger.Error("Failed to create vehicle booking", err)
		return serverError(c)
	}

	vc.Audit.Append(authUser.ID, authUser.Email, "vehicle_booking.create", "vehicle_booking", booking.ID, fiber.Map{
		"vehicle_id": booking.VehicleID,
		"start":      booking.StartTime,
	})

	logger.Success("Vehicle booking created with ID: " + strconv.FormatUint(uint64(booking.ID), 10))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Vehicle booking created",
		Data:    booking,
	})
}

// Update edits a booking in place. The guard excludes the booking's own id.
// Returned bookings are immutable.
func (vc *VehicleBookingController) Update(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid booking id")
	}

	var booking bookingModel.VehicleBooking
	if err := vc.DB.First(&booking, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c)
		}
		logger.Error("Failed to load vehicle booking", err)
		return serverError(c)
	}
	if booking.Returned {
		return badRequest(c, "Vehicle booking already returned")
	}

	var req bookingTypes.VehicleBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	excludeID := booking.ID
	err = vc.DB.Transaction(func(tx *gorm.DB) error {
		conflicts, err := vc.Conflicts.FindVehicleConflicts(req.VehicleID, req.StartTime, req.EndTime, &excludeID)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &guardError{conflicts: conflicts}
		}

		booking.VehicleID = req.VehicleID
		booking.Driver = req.Driver
		booking.Destination = req.Destination
		booking.Purpose = req.Purpose
		booking.StartTime = req.StartTime
		booking.EndTime = req.EndTime
		booking.OdometerStart = req.OdometerStart
		return tx.Save(&booking).Error
	})
	if err != nil {
		var guard *guardError
		if errors.As(err, &guard) {
			return vc.respondConflict(c, req, guard.conflicts)
		}
		logger.Error("Failed to update vehicle booking", err)
		return serverError(c)
	}

	vc.Audit.Append(authUser.ID, authUser.Email, "vehicle_booking.update", "vehicle_booking", booking.ID, nil)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Vehicle booking updated",
		Data:    booking,
	})
}

// Return marks a booking as returned, records the odometer reading and closes
// an open-ended interval at the return time. Returned bookings no longer
// participate in conflicts.
func (vc *VehicleBookingController) Return(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid booking id")
	}

	var booking bookingModel.VehicleBooking
	if err := vc.DB.First(&booking, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c)
		}
		logger.Error("Failed to load vehicle booking", err)
		return serverError(c)
	}
	if booking.Returned {
		return badRequest(c, "Vehicle booking already returned")
	}

	var req bookingTypes.ReturnVehicleRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return badRequest(c, "Invalid request body")
	}

	booking.Returned = true
	booking.OdometerEnd = req.OdometerEnd
	if booking.EndTime == nil {
		returnedAt := time.Now()
		booking.EndTime = &returnedAt
	}
	if err := vc.DB.Save(&booking).Error; err != nil {
		logger.Error("Failed to return vehicle booking", err)
		return serverError(c)
	}

	vc.Audit.Append(authUser.ID, authUser.Email, "vehicle_booking.return", "vehicle_booking", booking.ID, fiber.Map{
		"odometer_end": req.OdometerEnd,
	})

	logger.Success("Vehicle returned for booking ID: " + strconv.FormatUint(uint64(booking.ID), 10))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Vehicle returned",
		Data:    booking,
	})
}

// Destroy removes a booking.
func (vc *VehicleBookingController) Destroy(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid booking id")
	}

	result := vc.DB.Delete(&bookingModel.VehicleBooking{}, uint(id))
	if result.Error != nil {
		logger.Error("Failed to delete vehicle booking", result.Error)
		return serverError(c)
	}
	if result.RowsAffected == 0 {
		return notFound(c)
	}

	vc.Audit.Append(authUser.ID, authUser.Email, "vehicle_booking.delete", "vehicle_booking", uint(id), nil)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Vehicle booking deleted",
	})
}

type suggestionPayload struct {
	Slots               []conflict.Slot `json:"slots"`
	AlternativeVehicles interface{}     `json:"alternative_vehicles"`
}

func (vc *VehicleBookingController) buildSuggestions(req bookingTypes.VehicleBookingRequest) suggestionPayload {
	// Open-ended requests get a default one-hour slot length for suggestions.
	duration := 60
	if req.EndTime != nil {
		duration = int(req.EndTime.Sub(req.StartTime).Minutes())
	}
	slots, err := vc.Conflicts.FindVehicleSlots(req.VehicleID, req.StartTime, duration)
	if err != nil {
		logger.Error("Failed to compute slot suggestions", err)
		slots = nil
	}
	vehicleID := req.VehicleID
	freeVehicles, err := vc.Conflicts.FreeVehicles(req.StartTime, req.EndTime, &vehicleID)
	if err != nil {
		logger.Error("Failed to compute alternative vehicles", err)
		freeVehicles = nil
	}
	return suggestionPayload{Slots: slots, AlternativeVehicles: freeVehicles}
}

func (vc *VehicleBookingController) respondConflict(c *fiber.Ctx, req bookingTypes.VehicleBookingRequest, conflicts []conflict.Conflict) error {
	return c.Status(fiber.StatusConflict).JSON(types.ApiResponse{
		Status:  fiber.StatusConflict,
		Message: "Vehicle is already booked in that window",
		Data: fiber.Map{
			"conflicts":   conflicts,
			"suggestions": vc.buildSuggestions(req),
		},
	})
}

// guardError carries conflicts out of the check-and-insert transaction.
type guardError struct {
	conflicts []conflict.Conflict
}

func (e *guardError) Error() string {
	return "vehicle conflict"
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

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
		Status:  fiber.StatusNotFound,
		Message: "Vehicle booking not found",
	})
}

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
	})
}
