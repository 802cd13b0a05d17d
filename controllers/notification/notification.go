package notification

import (
	"strconv"

	"office-portal/logger"
	"office-portal/middleware"
	notificationModel "office-portal/models/notification"
	"office-portal/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// NotificationController serves the caller's own in-app notifications.
type NotificationController struct {
	DB *gorm.DB
}

// NewNotificationController creates a new notification controller
func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// Index lists the caller's notifications, newest first. ?unread=true filters
// to unread ones.
func (nc *NotificationController) Index(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	query := nc.DB.Where("user_id = ?", authUser.ID)
	if c.Query("unread") == "true" {
		query = query.Where("read = ?", false)
	}

	var notifications []notificationModel.Notification
	if err := query.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		logger.Error("Failed to list notifications", err)
		return serverError(c)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Notifications loaded",
		Data:    notifications,
	})
}

// UnreadCount returns the caller's unread notification count.
func (nc *NotificationController) UnreadCount(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var count int64
	err := nc.DB.Model(&notificationModel.Notification{}).
		Where("user_id = ? AND read = ?", authUser.ID, false).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count unread notifications", err)
		return serverError(c)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Unread count loaded",
		Data:    fiber.Map{"unread": count},
	})
}

// MarkRead marks one of the caller's notifications as read.
func (nc *NotificationController) MarkRead(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid notification id",
		})
	}

	result := nc.DB.Model(&notificationModel.Notification{}).
		Where("id = ? AND user_id = ?", uint(id), authUser.ID).
		Update("read", true)
	if result.Error != nil {
		logger.Error("Failed to mark notification read", result.Error)
		return serverError(c)
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "Notification not found",
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Notification marked read",
	})
}

// MarkAllRead marks every unread notification of the caller as read.
func (nc *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	authUser, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	result := nc.DB.Model(&notificationModel.Notification{}).
		Where("user_id = ? AND read = ?", authUser.ID, false).
		Update("read", true)
	if result.Error != nil {
		logger.Error("Failed to mark notifications read", result.Error)
		return serverError(c)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "All notifications marked read",
		Data:    fiber.Map{"updated": result.RowsAffected},
	})
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
		Status:  fiber.StatusUnauthorized,
		Message: "Invalid user claims",
	})
}

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
	})
}
