package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arnold/smartgoals-api/internal/database"
	"github.com/arnold/smartgoals-api/internal/logger"
	"github.com/arnold/smartgoals-api/internal/metrics"
	"github.com/arnold/smartgoals-api/internal/models"
)

// Notify stores an in-app notification and, when the user has push
// enabled, sends it to their devices. Push failures are logged only.
func Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string, metadata map[string]interface{}) (*models.Notification, error) {
	notif := models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
	}

	pushData := map[string]string{"type": notifType}
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err == nil {
			s := string(data)
			notif.Metadata = &s
		}
		for k, v := range metadata {
			pushData[k] = fmt.Sprintf("%v", v)
		}
	}

	if err := database.DB.WithContext(ctx).Create(&notif).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	metrics.RecordNotification("in_app", "sent")

	if Push.Enabled() && pushEnabledFor(ctx, userID) {
		sent, err := Push.SendToUser(ctx, userID, title, body, pushData)
		if err != nil && !errors.Is(err, ErrPushNotConfigured) {
			logger.L().Warn("push delivery failed", "user_id", userID, "type", notifType, "error", err)
		}
		if sent > 0 {
			now := time.Now()
			notif.PushedAt = &now
			database.DB.WithContext(ctx).Model(&notif).Update("pushed_at", now)
		}
	}
	return &notif, nil
}

func pushEnabledFor(ctx context.Context, userID uuid.UUID) bool {
	var settings models.UserSettings
	if err := database.DB.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return false
	}
	return settings.PushNotifications
}
