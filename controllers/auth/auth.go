package auth

import (
	"strings"

	"office-portal/logger"
	"office-portal/middleware"
	"office-portal/services/audit"
	"office-portal/services/twofactor"
	"office-portal/types"
	"office-portal/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuthController struct {
	db        *gorm.DB
	twoFactor *twofactor.Service
	audit     *audit.Service
}

func NewAuthController(db *gorm.DB, twoFactorSvc *twofactor.Service, auditSvc *audit.Service) *AuthController {
	return &AuthController{db: db, twoFactor: twoFactorSvc, audit: auditSvc}
}

type loginRequest struct {
	Email              string `json:"email"`
	Password           string `json:"password"`
	TrustedDeviceToken string `json:"trusted_device_token,omitempty"`
}

type verifyTwoFactorRequest struct {
	Code           string `json:"code"`
	UseBackupCode  bool   `json:"use_backup_code,omitempty"`
	RememberDevice bool   `json:"remember_device,omitempty"`
	DeviceName     string `json:"device_name,omitempty"`
}

// Login verifies the password and either issues a session token directly or,
// when two-factor is enabled and no valid trusted-device token accompanies the
// request, a short-lived handoff token for the verify step.
func (h *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Email and password are required",
		})
	}

	u, err := utils.GetUserByEmail(h.db, req.Email)
	if err != nil || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	if u.TOTPEnabled && !h.twoFactor.VerifyTrustedDevice(u.ID, req.TrustedDeviceToken) {
		twoFactorToken, err := utils.GenerateTwoFactorToken(u)
		if err != nil {
			logger.Error("Failed to generate 2FA token", err)
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Status:  fiber.StatusInternalServerError,
				Message: "Failed to issue token",
			})
		}
		return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "Two-factor verification required",
			Token:   twoFactorToken,
			Data:    fiber.Map{"requires_two_factor": true},
		})
	}

	accessToken, err := utils.GenerateAccessToken(u)
	if err != nil {
		logger.Error("Failed to generate access token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to issue token",
		})
	}

	h.audit.Append(u.ID, u.Email, "auth.login", "auth", u.ID, nil)

	logger.Success("User logged in: " + u.Email)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Login successful",
		Token:   accessToken,
		Data:    u,
	})
}

// VerifyTwoFactor completes a login started with a two-factor handoff token.
// Accepts a TOTP code or, with use_backup_code, a single-use backup code.
func (h *AuthController) VerifyTwoFactor(c *fiber.Ctx) error {
	claims, ok := h.parseTwoFactorToken(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid or expired two-factor token",
		})
	}
	userID := uint(claims["id"].(float64))

	var req verifyTwoFactorRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Verification code is required",
		})
	}

	var verified bool
	var err error
	if req.UseBackupCode {
		verified, err = h.twoFactor.VerifyBackupCode(userID, req.Code)
	} else {
		verified, err = h.twoFactor.VerifyCode(userID, req.Code)
	}
	if err != nil {
		logger.Error("Two-factor verification failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Verification failed",
		})
	}
	if !verified {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid verification code",
		})
	}

	u, err := utils.GetUserByEmail(h.db, claims["email"].(string))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "User not found",
		})
	}

	accessToken, err := utils.GenerateAccessToken(u)
	if err != nil {
		logger.Error("Failed to generate access token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to issue token",
		})
	}

	data := fiber.Map{"user": u}
	if req.RememberDevice {
		device, err := h.twoFactor.CreateTrustedDevice(u.ID, req.DeviceName)
		if err != nil {
			logger.Error("Failed to create trusted device", err)
		} else {
			data["trusted_device_token"] = device.Token
		}
	}

	h.audit.Append(u.ID, u.Email, "auth.login_2fa", "auth", u.ID, nil)

	logger.Success("Two-factor verification passed for " + u.Email)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Login successful",
		Token:   accessToken,
		Data:    data,
	})
}

// Profile returns the authenticated user's own record.
func (h *AuthController) Profile(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}

	u, err := utils.GetUserByEmail(h.db, authUser.Email)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "User not found",
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Profile loaded",
		Data:    u,
	})
}

// parseTwoFactorToken validates the bearer token and requires the two_fa type
// issued by Login. Access tokens are rejected here on purpose.
func (h *AuthController) parseTwoFactorToken(c *fiber.Ctx) (map[string]interface{}, bool) {
	authHeader := c.Get("Authorization")
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return nil, false
	}

	claims, err := middleware.VerifyJWT(tokenParts[1])
	if err != nil {
		return nil, false
	}
	if typ, _ := claims["typ"].(string); typ != "two_fa" {
		return nil, false
	}
	if _, ok := claims["id"].(float64); !ok {
		return nil, false
	}
	if _, ok := claims["email"].(string); !ok {
		return nil, false
	}
	return claims, true
}
