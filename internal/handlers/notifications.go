package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/arnold/smartgoals-api/internal/database"
	"github.com/arnold/smartgoals-api/internal/i18n"
	"github.com/arnold/smartgoals-api/internal/middleware"
	"github.com/arnold/smartgoals-api/internal/models"
	"github.com/arnold/smartgoals-api/internal/services"
)

// GetNotifications returns paginated notifications for the current user
func GetNotifications(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	var notifications []models.Notification
	if err := database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return internalError(c, "Failed to load notifications", err)
	}

	var total int64
	database.DB.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total)

	var unread int64
	database.DB.Model(&models.Notification{}).Where("user_id = ? AND read = ?", userID, false).Count(&unread)

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"total":         total,
		"unread":        unread,
		"page":          page,
		"limit":         limit,
	})
}

// MarkNotificationRead marks a single notification as read
func MarkNotificationRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid notification ID")
	}

	result := database.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notifID, userID).
		Updates(models.MarkReadUpdates(time.Now()))
	if result.Error != nil {
		return internalError(c, "Failed to update notification", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound(c, "Notification not found")
	}

	return c.JSON(fiber.Map{"success": true})
}

// MarkAllRead marks all notifications as read for the current user
func MarkAllRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	result := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(models.MarkReadUpdates(time.Now()))
	if result.Error != nil {
		return internalError(c, "Failed to update notifications", result.Error)
	}

	return c.JSON(fiber.Map{"success": true, "updated": result.RowsAffected})
}

// RegisterDeviceToken saves an FCM token; registering a known token again
// only refreshes its platform.
func RegisterDeviceToken(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.DeviceTokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	token := models.DeviceToken{UserID: userID, Token: req.Token, Platform: req.Platform}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"platform", "updated_at"}),
	}).Create(&token).Error
	if err != nil {
		return internalError(c, "Failed to register device token", err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// UnregisterDeviceToken removes an FCM token, for example on logout.
func UnregisterDeviceToken(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.DeviceTokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result := database.DB.Where("user_id = ? AND token = ?", userID, req.Token).Delete(&models.DeviceToken{})
	if result.Error != nil {
		return internalError(c, "Failed to remove device token", result.Error)
	}

	return c.JSON(fiber.Map{"success": true, "removed": result.RowsAffected})
}

// SendTestPush pushes a test message to every device of the current user.
func SendTestPush(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	locale := requestLocale(c)

	sent, err := services.Push.SendToUser(c.UserContext(), userID,
		i18n.T(locale, i18n.PushTestTitle), i18n.T(locale, i18n.PushTestBody),
		map[string]string{"type": "test"})
	if errors.Is(err, services.ErrPushNotConfigured) {
		return serviceUnavailable(c, "Push notifications are not configured")
	}
	if err != nil {
		return internalError(c, "Failed to send push notification", err)
	}

	return c.JSON(fiber.Map{"success": true, "sent": sent})
}

// SendTestEmail emails the current user a test message.
func SendTestEmail(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if !services.Email.Enabled() {
		return serviceUnavailable(c, "Email is not configured")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return notFound(c, "User not found")
	}

	if err := services.Email.SendTest(c.UserContext(), &user, requestLocale(c)); err != nil {
		return fail(c, fiber.StatusBadGateway, CodeExternalService, "Failed to send email")
	}

	return c.JSON(fiber.Map{"success": true, "to": user.Email})
}

// runJobNow triggers a scheduled job by hand outside production.
func runJobNow(job func(context.Context) (int, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.IsProduction() {
			return notFound(c, "Not found")
		}
		n, err := job(c.UserContext())
		if err != nil {
			return internalError(c, "Job failed", err)
		}
		return c.JSON(fiber.Map{"success": true, "processed": n})
	}
}

var (
	RunDailyRemindersNow = runJobNow(services.RunDailyReminders)
	RunWeeklyDigestNow   = runJobNow(services.RunWeeklyDigest)
)
