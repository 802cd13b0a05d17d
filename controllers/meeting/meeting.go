package meeting

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
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// MeetingController handles direct room bookings. Creation and update run the
// conflict guard; a non-empty conflict set produces a 409 with slot and
// alternative-room suggestions.
type MeetingController struct {
	DB        *gorm.DB
	Conflicts *conflict.Service
	Audit     *audit.Service
}

// NewMeetingController creates a new meeting controller
func NewMeetingController(db *gorm.DB, conflicts *conflict.Service, auditSvc *audit.Service) *MeetingController {
	return &MeetingController{DB: db, Conflicts: conflicts, Audit: auditSvc}
}

// Index lists room meetings, optionally filtered to one day with ?date=2026-08-31.
func (mc *MeetingController) Index(c *fiber.Ctx) error {
	query := mc.DB.Preload("Room")
	if dateParam := c.Query("date"); dateParam != "" {
		date, err := time.Parse("2006-01-02", dateParam)
		if err != nil {
			return badRequest(c, "Invalid date, expected YYYY-MM-DD")
		}
		dayStart := now.With(date).BeginningOfDay()
		query = query.Where("start_time < ? AND end_time > ?", dayStart.AddDate(0, 0, 1), dayStart)
	}
	if roomParam := c.Query("room_id"); roomParam != "" {
		query = query.Where("room_id = ?", roomParam)
	}

	var meetings []bookingModel.RoomMeeting
	if err := query.Order("start_time ASC").Find(&meetings).Error; err != nil {
		logger.Error("Failed to list room meetings", err)
		return serverError(c)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Room meetings loaded",
		Data:    meetings,
	})
}

// CheckAvailability is the dry-run form of the guard: same conflict check and
// suggestions, no write.
func (mc *MeetingController) CheckAvailability(c *fiber.Ctx) error {
	var req bookingTypes.MeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.RoomID == 0 || req.StartTime.IsZero() || req.EndTime.IsZero() {
		return badRequest(c, "room_id, start_time and end_time are required")
	}
	if !req.EndTime.After(req.StartTime) {
		return badRequest(c, "end_time must be after start_time")
	}

	conflicts, err := mc.Conflicts.FindRoomConflicts(req.RoomID, req.StartTime, req.EndTime, nil)
	if err != nil {
		logger.Error("Failed to check room availability", err)
		return serverError(c)
	}
	if len(conflicts) == 0 {
		return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "Room is available",
			Data:    fiber.Map{"available": true},
		})
	}

	suggestions := mc.buildSuggestions(req)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Room is not available",
		Data: fiber.Map{
			"available":   false,
			"conflicts":   conflicts,
			"suggestions": suggestions,
		},
	})
}

// Store creates a room meeting after the conflict guard passes.
func (mc *MeetingController) Store(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req bookingTypes.MeetingRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	var meeting bookingModel.RoomMeeting
	err := mc.DB.Transaction(func(tx *gorm.DB) error {
		conflicts, err := mc.Conflicts.FindRoomConflicts(req.RoomID, req.StartTime, req.EndTime, nil)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &guardError{conflicts: conflicts}
		}

		meeting = bookingModel.RoomMeeting{
			RoomID:      req.RoomID,
			Title:       req.Title,
			Description: req.Description,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			CreatedBy:   authUser.Email,
		}
		return tx.Create(&meeting).Error
	})
	if err != nil {
		var guard *guardError
		if errors.As(err, &guard) {
			return mc.respondConflict(c, req, guard.conflicts)
		}
		logger.Error("Failed to create room meeting", err)
		return serverError(c)
	}

	mc.Audit.Append(authUser.ID, authUser.Email, "room_meeting.create", "room_meeting", meeting.ID, fiber.Map{
		"room_id": meeting.RoomID,
		"start":   meeting.StartTime,
	})

	logger.Success("Room meeting created with ID: " + strconv.FormatUint(uint64(meeting.ID), 10))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Room meeting created",
		Data:    meeting,
	})
}

// Update edits a meeting in place. The guard excludes the meeting's own id so
// an unchanged interval never conflicts with itself.
func (mc *MeetingController) Update(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid meeting id")
	}

	var meeting bookingModel.RoomMeeting
	if err := mc.DB.First(&meeting, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Room meeting not found")
		}
		logger.Error("Failed to load room meeting", err)
		return serverError(c)
	}

	var req bookingTypes.MeetingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	excludeID := meeting.ID
	err = mc.DB.Transaction(func(tx *gorm.DB) error {
		conflicts, err := mc.Conflicts.FindRoomConflicts(req.RoomID, req.StartTime, req.EndTime, &excludeID)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &guardError{conflicts: conflicts}
		}

		meeting.RoomID = req.RoomID
		meeting.Title = req.Title
		meeting.Description = req.Description
		meeting.StartTime = req.StartTime
		meeting.EndTime = req.EndTime
		return tx.Save(&meeting).Error
	})
	if err != nil {
		var guard *guardError
		if errors.As(err, &guard) {
			return mc.respondConflict(c, req, guard.conflicts)
		}
		logger.Error("Failed to update room meeting", err)
		return serverError(c)
	}

	mc.Audit.Append(authUser.ID, authUser.Email, "room_meeting.update", "room_meeting", meeting.ID, nil)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Room meeting updated",
		Data:    meeting,
	})
}

// Destroy removes a meeting.
func (mc *MeetingController) Destroy(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid meeting id")
	}

	result := mc.DB.Delete(&bookingModel.RoomMeeting{}, uint(id))
	if result.Error != nil {
		logger.Error("Failed to delete room meeting", result.Error)
		return serverError(c)
	}
	if result.RowsAffected == 0 {
		return notFound(c, "Room meeting not found")
	}

	mc.Audit.Append(authUser.ID, authUser.Email, "room_meeting.delete", "room_meeting", uint(id), nil)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Room meeting deleted",
	})
}

type suggestionPayload struct {
	Slots            []conflict.Slot `json:"slots"`
	AlternativeRooms interface{}     `json:"alternative_rooms"`
}

func (mc *MeetingController) buildSuggestions(req bookingTypes.MeetingRequest) suggestionPayload {
	duration := int(req.EndTime.Sub(req.StartTime).Minutes())
	slots, err := mc.Conflicts.FindRoomSlots(req.RoomID, req.StartTime, duration)
	if err != nil {
		logger.Error("Failed to compute slot suggestions", err)
		slots = nil
	}
	roomID := req.RoomID
	freeRooms, err := mc.Conflicts.FreeRooms(req.StartTime, req.EndTime, &roomID)
	if err != nil {
		logger.Error("Failed to compute alternative rooms", err)
		freeRooms = nil
	}
	return suggestionPayload{Slots: slots, AlternativeRooms: freeRooms}
}

func (mc *MeetingController) respondConflict(c *fiber.Ctx, req bookingTypes.MeetingRequest, conflicts []conflict.Conflict) error {
	return c.Status(fiber.StatusConflict).JSON(types.ApiResponse{
		Status:  fiber.StatusConflict,
		Message: "Room is already booked in that window",
		Data: fiber.Map{
			"conflicts":   conflicts,
			"suggestions": mc.buildSuggestions(req),
		},
	})
}

// guardError carries conflicts out of the check-and-insert transaction.
type guardError struct {
	conflicts []conflict.Conflict
}

func (e *guardError) Error() string {
	return "room conflict"
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

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
		Status:  fiber.StatusNotFound,
		Message: message,
	})
}

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
	})
}
