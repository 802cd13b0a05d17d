package twofactor

import (
	"errors"
	"strconv"

	"office-portal/logger"
	"office-portal/middleware"
	userModel "office-portal/models/user"
	"office-portal/services/notifier"
	twofactorService "office-portal/services/twofactor"
	"office-portal/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// TwoFactorController exposes enrollment, backup codes, and trusted-device
// management. Verification during login lives in the auth controller.
type TwoFactorController struct {
	DB        *gorm.DB
	TwoFactor *twofactorService.Service
	Notifier  *notifier.Dispatcher
}

// NewTwoFactorController creates a new two-factor controller
func NewTwoFactorController(db *gorm.DB, svc *twofactorService.Service, dispatcher *notifier.Dispatcher) *TwoFactorController {
	return &TwoFactorController{DB: db, TwoFactor: svc, Notifier: dispatcher}
}

type enableRequest struct {
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

type disableRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

type regenerateRequest struct {
	Password string `json:"password"`
}

// Status returns the caller's two-factor state.
func (tc *TwoFactorController) Status(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	status, err := tc.TwoFactor.Status(authUser.ID)
	if err != nil {
		return respondTwoFactorError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Two-factor status loaded",
		Data:    status,
	})
}

// Setup generates a fresh secret and QR code. Nothing is stored until Enable.
func (tc *TwoFactorController) Setup(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	result, err := tc.TwoFactor.Setup(authUser.ID)
	if err != nil {
		return respondTwoFactorError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Scan the QR code with your authenticator app, then confirm with a code",
		Data:    result,
	})
}

// Enable confirms the secret from Setup with a first code and returns the
// one-time view of the backup codes.
func (tc *TwoFactorController) Enable(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req enableRequest
	if err := c.BodyParser(&req); err != nil || req.Secret == "" || req.Code == "" {
		return badRequest(c, "secret and code are required")
	}

	backupCodes, err := tc.TwoFactor.Enable(authUser.ID, req.Secret, req.Code)
	if err != nil {
		return respondTwoFactorError(c, err)
	}

	logger.Success("Two-factor authentication enabled for " + authUser.Email)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Two-factor authentication enabled. Store these backup codes now, they will not be shown again",
		Data:    fiber.Map{"backup_codes": backupCodes},
	})
}

// Disable turns two-factor off after a password and code check.
func (tc *TwoFactorController) Disable(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req disableRequest
	if err := c.BodyParser(&req); err != nil || req.Password == "" || req.Code == "" {
		return badRequest(c, "password and code are required")
	}

	if err := tc.TwoFactor.Disable(authUser.ID, req.Password, req.Code); err != nil {
		return respondTwoFactorError(c, err)
	}

	logger.Success("Two-factor authentication disabled for " + authUser.Email)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Two-factor authentication disabled",
	})
}

// RegenerateBackupCodes replaces the caller's backup codes after a password
// check and returns the new set once.
func (tc *TwoFactorController) RegenerateBackupCodes(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req regenerateRequest
	if err := c.BodyParser(&req); err != nil || req.Password == "" {
		return badRequest(c, "password is required")
	}

	backupCodes, err := tc.TwoFactor.RegenerateBackupCodes(authUser.ID, req.Password)
	if err != nil {
		return respondTwoFactorError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Backup codes regenerated. Store these now, they will not be shown again",
		Data:    fiber.Map{"backup_codes": backupCodes},
	})
}

// ListTrustedDevices returns the caller's trusted devices.
func (tc *TwoFactorController) ListTrustedDevices(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	devices, err := tc.TwoFactor.ListTrustedDevices(authUser.ID)
	if err != nil {
		logger.Error("Failed to list trusted devices", err)
		return serverError(c)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Trusted devices loaded",
		Data:    devices,
	})
}

// DeleteTrustedDevice revokes one of the caller's trusted devices.
func (tc *TwoFactorController) DeleteTrustedDevice(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	deviceID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid device id")
	}

	if err := tc.TwoFactor.DeleteTrustedDevice(authUser.ID, uint(deviceID)); err != nil {
		return respondTwoFactorError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Trusted device removed",
	})
}

// AdminReset clears a locked-out user's two-factor state. Admin only; the
// target is notified by email.
func (tc *TwoFactorController) AdminReset(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	targetID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	var target userModel.User
	if err := tc.DB.First(&target, uint(targetID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "User not found",
			})
		}
		logger.Error("Failed to load user", err)
		return serverError(c)
	}

	if err := tc.TwoFactor.AdminReset(authUser.ID, authUser.Email, target.ID); err != nil {
		return respondTwoFactorError(c, err)
	}

	tc.Notifier.Send(notifier.TemplateTwoFactorReset, notifier.Recipient{
		UserID: target.ID,
		Email:  target.Email,
		Name:   target.Name,
	}, map[string]string{
		"name":  target.Name,
		"admin": authUser.Name,
	})

	logger.Success("Two-factor state reset for " + target.Email)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Two-factor authentication reset for user",
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

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
	})
}

// respondTwoFactorError maps two-factor service errors onto HTTP responses.
func respondTwoFactorError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, twofactorService.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "User not found",
		})
	case errors.Is(err, twofactorService.ErrAlreadyEnabled):
		return badRequest(c, "Two-factor authentication is already enabled")
	case errors.Is(err, twofactorService.ErrNotEnabled):
		return badRequest(c, "Two-factor authentication is not enabled")
	case errors.Is(err, twofactorService.ErrInvalidCode):
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid verification code",
		})
	case errors.Is(err, twofactorService.ErrWrongPassword):
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Password does not match",
		})
	case errors.Is(err, twofactorService.ErrDeviceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Trusted device not found",
		})
	default:
		logger.Error("Two-factor operation failed", err)
		return serverError(c)
	}
}
