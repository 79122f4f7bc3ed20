package services

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/arnold/smartgoals-api/internal/database"
	"github.com/arnold/smartgoals-api/internal/logger"
	"github.com/arnold/smartgoals-api/internal/metrics"
	"github.com/arnold/smartgoals-api/internal/models"
)

var ErrPushNotConfigured = errors.New("push notifications are not configured")

// multicaster is the part of the FCM client used here.
type multicaster interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// PushService handles sending push notifications via Firebase Cloud Messaging
type PushService struct {
	client multicaster
}

// Global push service instance
var Push = &PushService{}

// InitPush initializes the Firebase push notification service.
// Push stays disabled if no service account is configured (dev mode) or
// Firebase cannot be initialized.
func InitPush(ctx context.Context, serviceAccountPath string) *PushService {
	log := logger.L()
	if serviceAccountPath == "" {
		log.Info("FCM: no service account configured, push notifications disabled")
		Push = &PushService{}
		return Push
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.Warn("FCM: failed to initialize Firebase app", "error", err)
		Push = &PushService{}
		return Push
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Warn("FCM: failed to get messaging client", "error", err)
		Push = &PushService{}
		return Push
	}

	Push = &PushService{client: client}
	log.Info("FCM: push notifications enabled")
	return Push
}

func (p *PushService) Enabled() bool {
	return p != nil && p.client != nil
}

// SendToUser pushes to every registered device of the user and returns how
// many deliveries succeeded. Tokens FCM reports as unregistered are removed.
func (p *PushService) SendToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) (int, error) {
	if !p.Enabled() {
		return 0, ErrPushNotConfigured
	}

	var tokens []models.DeviceToken
	if err := database.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&tokens).Error; err != nil {
		return 0, fmt.Errorf("load device tokens: %w", err)
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	registration := make([]string, len(tokens))
	for i, t := range tokens {
		registration[i] = t.Token
	}

	resp, err := p.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: registration,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	if err != nil {
		metrics.RecordNotification("push", "failed")
		return 0, fmt.Errorf("send push: %w", err)
	}

	var stale []string
	for i, r := range resp.Responses {
		if r.Success {
			metrics.RecordNotification("push", "sent")
			continue
		}
		metrics.RecordNotification("push", "failed")
		if messaging.IsUnregistered(r.Error) {
			stale = append(stale, registration[i])
			continue
		}
		logger.L().Warn("FCM: delivery failed", "user_id", userID, "error", r.Error)
	}

	if len(stale) > 0 {
		if err := database.DB.Where("user_id = ? AND token IN ?", userID, stale).
			Delete(&models.DeviceToken{}).Error; err != nil {
			logger.L().Warn("FCM: failed to prune tokens", "user_id", userID, "error", err)
		} else {
			logger.L().Info("FCM: pruned unregistered tokens", "user_id", userID, "count", len(stale))
		}
	}
	return resp.SuccessCount, nil
}
