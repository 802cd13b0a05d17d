package vehicle

import (
	"errors"
	"strconv"
	"time"

	"office-portal/logger"
	"office-portal/middleware"
	vehicleModel "office-portal/models/vehicle"
	"office-portal/services/audit"
	"office-portal/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// VehicleController manages the vehicle fleet catalog. Writes are back-office
// only; routes enforce the roles.
type VehicleController struct {
	DB    *gorm.DB
	Audit *audit.Service
}

// NewVehicleController creates a new vehicle controller
func NewVehicleController(db *gorm.DB, auditSvc *audit.Service) *VehicleController {
	return &VehicleController{DB: db, Audit: auditSvc}
}

type vehicleRequest struct {
	Name        string `json:"name"`
	PlateNumber string `json:"plate_number"`
	Seats       int    `json:"seats"`
	Active      *bool  `json:"active,omitempty"`
}

func (r vehicleRequest) validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.PlateNumber == "" {
		return errors.New("plate_number is required")
	}
	if r.Seats <= 0 {
		return errors.New("seats must be positive")
	}
	return nil
}

// Index lists vehicles. ?active=true restricts to bookable ones.
func (vc *VehicleController) Index(c *fiber.Ctx) error {
	query := vc.DB.Where("deleted_at IS NULL")
	if c.Query("active") == "true" {
		query = query.Where("active = ?", true)
	}

	var vehicles []vehicleModel.Vehicle
	if err := query.Order("name ASC").Find(&vehicles).Error; err != nil {
		logger.Error("Failed to list vehicles", err)
		return serverError(c)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Vehicles loaded",
		Data:    vehicles,
	})
}

// Store creates a vehicle.
func (vc *VehicleController) Store(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req vehicleRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return badRequest(c, "Invalid request body")
	}
	if err := req.validate(); err != nil {
		return badRequest(c, err.Error())
	}

	vehicle := vehicleModel.Vehicle{
		Name:        req.Name,
		PlateNumber: req.PlateNumber,
		Seats:       req.Seats,
		Active:      true,
	}
	if req.Active != nil {
		vehicle.Active = *req.Active
	}
	if err := vc.DB.Create(&vehicle).Error; err != nil {
		logger.Error("Failed to create vehicle", err)
		return serverError(c)
	}

	vc.Audit.Append(authUser.ID, authUser.Email, "vehicle.create", "vehicle", vehicle.ID, fiber.Map{"plate_number": vehicle.PlateNumber})

	logger.Success("Vehicle created: " + vehicle.PlateNumber)
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Vehicle created",
		Data:    vehicle,
	})
}

// Update edits a vehicle. Deactivating leaves existing bookings untouched.
func (vc *VehicleController) Update(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid vehicle id")
	}

	var vehicle vehicleModel.Vehicle
	if err := vc.DB.Where("deleted_at IS NULL").First(&vehicle, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c)
		}
		logger.Error("Failed to load vehicle", err)
		return serverError(c)
	}

	var req vehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := req.validate(); err != nil {
		return badRequest(c, err.Error())
	}

	vehicle.Name = req.Name
	vehicle.PlateNumber = req.PlateNumber
	vehicle.Seats = req.Seats
	if req.Active != nil {
		vehicle.Active = *req.Active
	}
	if err := vc.DB.Save(&vehicle).Error; err != nil {
		logger.Error("Failed to update vehicle", err)
		return serverError(c)
	}

	vc.Audit.Append(authUser.ID, authUser.Email, "vehicle.update", "vehicle", vehicle.ID, nil)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Vehicle updated",
		Data:    vehicle,
	})
}

// Destroy soft-deletes a vehicle. Existing bookings remain for history.
func (vc *VehicleController) Destroy(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid vehicle id")
	}

	result := vc.DB.Model(&vehicleModel.Vehicle{}).
		Where("id = ? AND deleted_at IS NULL", uint(id)).
		Updates(map[string]interface{}{"active": false, "deleted_at": time.Now()})
	if result.Error != nil {
		logger.Error("Failed to delete vehicle", result.Error)
		return serverError(c)
	}
	if result.RowsAffected == 0 {
		return notFound(c)
	}

	vc.Audit.Append(authUser.ID, authUser.Email, "vehicle.delete", "vehicle", uint(id), nil)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Vehicle deleted",
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
		Message: "Vehicle not found",
	})
}

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
	})
}
