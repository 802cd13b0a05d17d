package user

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"office-portal/constants"
	"office-portal/logger"
	"office-portal/middleware"
	userModel "office-portal/models/user"
	"office-portal/services/audit"
	"office-portal/types"
	"office-portal/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserController covers admin account management plus the caller's own
// notification preferences.
type UserController struct {
	DB    *gorm.DB
	Audit *audit.Service
}

// NewUserController creates a new user controller
func NewUserController(db *gorm.DB, auditSvc *audit.Service) *UserController {
	return &UserController{DB: db, Audit: auditSvc}
}

type createUserRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	Phone    *string `json:"phone,omitempty"`
}

type updateUserRequest struct {
	Name   *string `json:"name,omitempty"`
	Role   *string `json:"role,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

type preferencesRequest struct {
	EmailNotifications *bool `json:"email_notifications,omitempty"`
	WeeklyDigest       *bool `json:"weekly_digest,omitempty"`
}

func validRole(role string) bool {
	switch role {
	case constants.RoleAdmin, constants.RoleSecretary, constants.RoleStaff:
		return true
	default:
		return false
	}
}

// Index lists accounts. Admin only; routes enforce the role.
func (uc *UserController) Index(c *fiber.Ctx) error {
	query := uc.DB.Where("deleted_at IS NULL")
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []userModel.User
	if err := query.Order("name ASC").Find(&users).Error; err != nil {
		logger.Error("Failed to list users", err)
		return serverError(c)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Users loaded",
		Data:    users,
	})
}

// Store creates an account.
func (uc *UserController) Store(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return badRequest(c, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.ValidateEmail(req.Email) {
		return badRequest(c, "Invalid email address")
	}
	if len(req.Password) < 8 {
		return badRequest(c, "Password must be at least 8 characters")
	}
	if req.Name == "" {
		return badRequest(c, "name is required")
	}
	if req.Role == "" {
		req.Role = constants.RoleStaff
	}
	if !validRole(req.Role) {
		return badRequest(c, "Invalid role")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return serverError(c)
	}

	u := userModel.User{
		Email:              req.Email,
		PasswordHash:       hash,
		Name:               req.Name,
		Role:               req.Role,
		Phone:              req.Phone,
		Active:             true,
		EmailNotifications: true,
	}
	if err := uc.DB.Create(&u).Error; err != nil {
		logger.Error("Failed to create user", err)
		return badRequest(c, "Email is already in use")
	}

	uc.Audit.Append(authUser.ID, authUser.Email, "user.create", "user", u.ID, fiber.Map{
		"email": u.Email,
		"role":  u.Role,
	})

	logger.Success("User created: " + u.Email)
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "User created",
		Data:    u,
	})
}

// Update edits an account's name, role, phone, or active flag.
func (uc *UserController) Update(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	var u userModel.User
	if err := uc.DB.Where("deleted_at IS NULL").First(&u, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c)
		}
		logger.Error("Failed to load user", err)
		return serverError(c)
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Role != nil && !validRole(*req.Role) {
		return badRequest(c, "Invalid role")
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.Active != nil {
		u.Active = *req.Active
	}
	if err := uc.DB.Save(&u).Error; err != nil {
		logger.Error("Failed to update user", err)
		return serverError(c)
	}

	uc.Audit.Append(authUser.ID, authUser.Email, "user.update", "user", u.ID, nil)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "User updated",
		Data:    u,
	})
}

// Destroy soft-deletes an account and deactivates it.
func (uc *UserController) Destroy(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid user id")
	}
	if uint(id) == authUser.ID {
		return badRequest(c, "Cannot delete your own account")
	}

	result := uc.DB.Model(&userModel.User{}).
		Where("id = ? AND deleted_at IS NULL", uint(id)).
		Updates(map[string]interface{}{"active": false, "deleted_at": time.Now()})
	if result.Error != nil {
		logger.Error("Failed to delete user", result.Error)
		return serverError(c)
	}
	if result.RowsAffected == 0 {
		return notFound(c)
	}

	uc.Audit.Append(authUser.ID, authUser.Email, "user.delete", "user", uint(id), nil)

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "User deleted",
	})
}

// UpdatePreferences sets the caller's own notification preferences.
func (uc *UserController) UpdatePreferences(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req preferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var u userModel.User
	if err := uc.DB.First(&u, authUser.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c)
		}
		logger.Error("Failed to load user", err)
		return serverError(c)
	}

	if req.EmailNotifications != nil {
		u.EmailNotifications = *req.EmailNotifications
	}
	if req.WeeklyDigest != nil {
		u.WeeklyDigest = *req.WeeklyDigest
	}
	if err := uc.DB.Save(&u).Error; err != nil {
		logger.Error("Failed to update preferences", err)
		return serverError(c)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Preferences updated",
		Data: fiber.Map{
			"email_notifications": u.EmailNotifications,
			"weekly_digest":       u.WeeklyDigest,
		},
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
		Message: "User not found",
	})
}

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
	})
}
