package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/arnold/smartgoals-api/internal/database"
	"github.com/arnold/smartgoals-api/internal/i18n"
	"github.com/arnold/smartgoals-api/internal/middleware"
	"github.com/arnold/smartgoals-api/internal/models"
)

func GetProfile(c *fiber.Ctx) error {
	return GetMe(c)
}

func UpdateProfile(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return notFound(c, "User not found")
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			var count int64
			database.DB.Model(&models.User{}).Where("email = ? AND id <> ?", email, userID).Count(&count)
			if count > 0 {
				return fail(c, fiber.StatusConflict, CodeConflict, "Email already registered")
			}
			updates["email"] = email
		}
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
			return internalError(c, "Failed to update profile", err)
		}
		LogActivity(userID, models.ActivityProfileUpdated, "Updated profile", nil)
	}

	database.DB.First(&user, "id = ?", userID)
	return c.JSON(user)
}

// loadSettings returns the user's settings, creating the defaults when the
// row is missing.
func loadSettings(db *gorm.DB, c *fiber.Ctx) (*models.UserSettings, error) {
	userID := middleware.GetUserID(c)

	var settings models.UserSettings
	err := db.Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.DefaultSettings(userID)
		err = db.Create(&settings).Error
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func GetSettings(c *fiber.Ctx) error {
	settings, err := loadSettings(database.DB, c)
	if err != nil {
		return internalError(c, "Failed to load settings", err)
	}
	return c.JSON(settings)
}

func UpdateSettings(c *fiber.Ctx) error {
	var req models.UpdateSettingsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	settings, err := loadSettings(database.DB, c)
	if err != nil {
		return internalError(c, "Failed to load settings", err)
	}

	req.Apply(settings)
	if err := database.DB.Save(settings).Error; err != nil {
		return internalError(c, "Failed to update settings", err)
	}
	LogActivity(settings.UserID, models.ActivitySettingsUpdated, "Updated settings", nil)

	return c.JSON(settings)
}

// requestLocale prefers the user's saved language over Accept-Language.
func requestLocale(c *fiber.Ctx) string {
	var settings models.UserSettings
	if err := database.DB.Select("language").Where("user_id = ?", middleware.GetUserID(c)).First(&settings).Error; err == nil && settings.Language != "" {
		return settings.Language
	}
	return acceptLocale(c)
}

func acceptLocale(c *fiber.Ctx) string {
	return i18n.Match(c.Get(fiber.HeaderAcceptLanguage))
}
