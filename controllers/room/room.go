package room

import (
	"errors"
	"strconv"
	"time"

	"office-portal/logger"
	"office-portal/middleware"
	roomModel "office-portal/models/room"
	"office-portal/services/audit"
	"office-portal/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RoomController manages the meeting room catalog. Writes are back-office
// only; routes enforce the roles.
type RoomController struct {
	DB    *gorm.DB
	Audit *audit.Service
}

// NewRoomController creates a new room controller
func NewRoomController(db *gorm.DB, auditSvc *audit.Service) *RoomController {
	return &RoomController{DB: db, Audit: auditSvc}
}

type roomRequest struct {
	Name      string `json:"name"`
	Location  string `json:"location"`
	Capacity  int    `json:"capacity"`
	Equipment string `json:"equipment"`
	Active    *bool  `json:"active,omitempty"`
}

func (r roomRequest) validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Capacity < 0 {
		return errors.New("capacity cannot be negative")
	}
	return nil
}

// Index lists rooms. ?active=true restricts to bookable ones.
func (rc *RoomController) Index(c *fiber.Ctx) error {
	query := rc.DB.Where("deleted_at IS NULL")
	if c.Query("active") == "true" {
		query = query.Where("active = ?", true)
	}

	var rooms []roomModel.Room
	if err := query.Order("name ASC").Find(&rooms).Error; err != nil {
		logger.Error("Failed to list rooms", err)
		return serverError(c)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Rooms loaded",
		Data:    rooms,
	})
}

// Store creates a room.
func (rc *RoomController) Store(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req roomRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return badRequest(c, "Invalid request body")
	}
	if err := req.validate(); err != nil {
		return badRequest(c, err.Error())
	}

	room := roomModel.Room{
		Name:      req.Name,
		Location:  req.Location,
		Capacity:  req.Capacity,
		Equipment: req.Equipment,
		Active:    true,
	}
	if req.Active != nil {
		room.Active = *req.Active
	}
	if err := rc.DB.Create(&room).Error; err != nil {
		logger.Error("Failed to create room", err)
		return serverError(c)
	}

	rc.Audit.Append(authUser.ID, authUser.Email, "room.create", "room", room.ID, fiber.Map{"name": room.Name})

	logger.Success("Room created: " + room.Name)
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Room created",
		Data:    room,
	})
}

// Update edits a room. Deactivating leaves existing meetings untouched.
func (rc *RoomController) Update(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid room id")
	}

	var room roomModel.Room
	if err := rc.DB.Where("deleted_at IS NULL").First(&room, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c)
		}
		logger.Error("Failed to load room", err)
		return serverError(c)
	}

	var req roomRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := req.validate(); err != nil {
		return badRequest(c, err.Error())
	}

	room.Name = req.Name
	room.Location = req.Location
	room.Capacity = req.Capacity
	room.Equipment = req.Equipment
	if req.Active != nil {
		room.Active = *req.Active
	}
	if err := rc.DB.Save(&room).Error; err != nil {
		logger.Error("Failed to update room", err)
		return serverError(c)
	}

	rc.Audit.Append(authUser.ID, authUser.Email, "room.update", "room", room.ID, nil)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Room updated",
		Data:    room,
	})
}

// Destroy soft-deletes a room. Existing meetings remain for history.
func (rc *RoomController) Destroy(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid room id")
	}

	result := rc.DB.Model(&roomModel.Room{}).
		Where("id = ? AND deleted_at IS NULL", uint(id)).
		Updates(map[string]interface{}{"active": false, "deleted_at": time.Now()})
	if result.Error != nil {
		logger.Error("Failed to delete room", result.Error)
		return serverError(c)
	}
	if result.RowsAffected == 0 {
		return notFound(c)
	}

	rc.Audit.Append(authUser.ID, authUser.Email, "room.delete", "room", uint(id), nil)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Room deleted",
	})
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
		Message: "Room not found",
	})
}

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
	})
}
