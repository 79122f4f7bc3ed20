package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types.
const (
	NotificationWelcome       = "welcome"
	NotificationGoalReminder  = "goal_reminder"
	NotificationGoalCompleted = "goal_completed"
	NotificationWeeklyDigest  = "weekly_digest"
)

// Notification is an in-app message. PushedAt is set once at least one
// device accepted the push copy.
type Notification struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID      `json:"userId" gorm:"type:uuid;not null;index:idx_notifications_user_read,priority:1"`
	Type      string         `json:"type" gorm:"not null;size:32"`
	Title     string         `json:"title" gorm:"not null"`
	Body      string         `json:"body"`
	Read      bool           `json:"read" gorm:"index:idx_notifications_user_read,priority:2"`
	ReadAt    *time.Time     `json:"readAt,omitempty"`
	PushedAt  *time.Time     `json:"pushedAt,omitempty"`
	Metadata  *string        `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// MarkReadUpdates is the column set applied when notifications are read.
func MarkReadUpdates(now time.Time) map[string]interface{} {
	return map[string]interface{}{"read": true, "read_at": now}
}
