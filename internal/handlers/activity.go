package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/arnold/smartgoals-api/internal/database"
	"github.com/arnold/smartgoals-api/internal/logger"
	"github.com/arnold/smartgoals-api/internal/middleware"
	"github.com/arnold/smartgoals-api/internal/models"
)

// LogActivity records an entry in the user's activity feed. Failures are
// logged and otherwise ignored so they never fail the request.
func LogActivity(userID uuid.UUID, activityType, description string, metadata map[string]interface{}) {
	activity := models.Activity{
		UserID:      userID,
		Type:        activityType,
		Description: description,
	}
	if metadata != nil {
		if data, err := json.Marshal(metadata); err == nil {
			s := string(data)
			activity.Metadata = &s
		}
	}
	if err := database.DB.Create(&activity).Error; err != nil {
		logger.L().Warn("failed to log activity", "user_id", userID, "type", activityType, "error", err)
	}
}

// GetActivities returns the newest activities for the current user
func GetActivities(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			return validationFailed(c, "limit", "limit must be between 1 and 100")
		}
		limit = n
	}

	var activities []models.Activity
	if err := database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error; err != nil {
		return internalError(c, "Failed to load activities", err)
	}

	return c.JSON(activities)
}
