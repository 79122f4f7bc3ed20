package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserSettings holds one row per user, created at registration.
type UserSettings struct {
	ID                  uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID              uuid.UUID `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	EmailNotifications  bool      `json:"emailNotifications"`
	PushNotifications   bool      `json:"pushNotifications"`
	WeeklyDigest        bool      `json:"weeklyDigest"`
	GoalReminders       bool      `json:"goalReminders"`
	DefaultGoalDuration string    `json:"defaultGoalDuration"`
	AIBreakdownDetail   string    `json:"aiBreakdownDetail"`
	Theme               string    `json:"theme"`
	Language            string    `json:"language"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (s *UserSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// DefaultSettings returns the settings a new user starts with. Booleans are
// set here rather than as column defaults so that false survives inserts.
func DefaultSettings(userID uuid.UUID) UserSettings {
	return UserSettings{
		UserID:              userID,
		EmailNotifications:  true,
		PushNotifications:   false,
		WeeklyDigest:        true,
		GoalReminders:       true,
		DefaultGoalDuration: "3-months",
		AIBreakdownDetail:   "detailed",
		Theme:               "light",
		Language:            "en",
	}
}

type UpdateSettingsRequest struct {
	EmailNotifications  *bool   `json:"emailNotifications"`
	PushNotifications   *bool   `json:"pushNotifications"`
	WeeklyDigest        *bool   `json:"weeklyDigest"`
	GoalReminders       *bool   `json:"goalReminders"`
	DefaultGoalDuration *string `json:"defaultGoalDuration" validate:"omitempty,oneof=1-month 3-months 6-months 1-year"`
	AIBreakdownDetail   *string `json:"aiBreakdownDetail" validate:"omitempty,oneof=brief detailed comprehensive"`
	Theme               *string `json:"theme" validate:"omitempty,oneof=light dark system"`
	Language            *string `json:"language" validate:"omitempty,locale"`
}

// Apply copies the non-nil fields onto s.
func (r *UpdateSettingsRequest) Apply(s *UserSettings) {
	if r.EmailNotifications != nil {
		s.EmailNotifications = *r.EmailNotifications
	}
	if r.PushNotifications != nil {
		s.PushNotifications = *r.PushNotifications
	}
	if r.WeeklyDigest != nil {
		s.WeeklyDigest = *r.WeeklyDigest
	}
	if r.GoalReminders != nil {
		s.GoalReminders = *r.GoalReminders
	}
	if r.DefaultGoalDuration != nil {
		s.DefaultGoalDuration = *r.DefaultGoalDuration
	}
	if r.AIBreakdownDetail != nil {
		s.AIBreakdownDetail = *r.AIBreakdownDetail
	}
	if r.Theme != nil {
		s.Theme = *r.Theme
	}
	if r.Language != nil {
		s.Language = *r.Language
	}
}
