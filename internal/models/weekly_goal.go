package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	WeeklyStatusPending    = "pending"
	WeeklyStatusInProgress = "in_progress"
	WeeklyStatusCompleted  = "completed"
)

type WeeklyGoal struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	GoalID      uuid.UUID      `json:"goalId" gorm:"type:uuid;index;not null"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description"`
	WeekNumber  int            `json:"weekNumber" gorm:"not null"`
	StartDate   string         `json:"startDate"`
	EndDate     string         `json:"endDate"`
	Progress    int            `json:"progress" gorm:"default:0"`
	Status      string         `json:"status" gorm:"not null"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	Tasks       []Task         `json:"tasks" gorm:"foreignKey:WeeklyGoalID"`
}

func (w *WeeklyGoal) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Status == "" {
		w.Status = WeeklyStatusPending
	}
	return nil
}

// WeeklyStatusFor maps a completion percentage to a weekly status.
func WeeklyStatusFor(progress int) string {
	switch {
	case progress >= 100:
		return WeeklyStatusCompleted
	case progress > 0:
		return WeeklyStatusInProgress
	default:
		return WeeklyStatusPending
	}
}
