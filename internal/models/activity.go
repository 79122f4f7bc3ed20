package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActivityGoalCreated       = "goal_created"
	ActivityGoalDraftCreated  = "goal_draft_created"
	ActivityGoalDeleted       = "goal_deleted"
	ActivityGoalStatusChanged = "goal_status_changed"
	ActivityTaskCompleted     = "task_completed"
	ActivityProfileUpdated    = "profile_updated"
	ActivitySettingsUpdated   = "settings_updated"
	ActivityBreakdownSaved    = "breakdown_saved"
)

type Activity struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `json:"userId" gorm:"type:uuid;index;not null"`
	Type        string    `json:"type" gorm:"not null;index"`
	Description string    `json:"description"`
	Metadata    *string   `json:"metadata"` // JSON string with ids for navigation
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
